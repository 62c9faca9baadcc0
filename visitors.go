// visitors.go - privacy-conscious page view tracking
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/manojvamsi/portfolio/internal/contact"
	"github.com/manojvamsi/portfolio/internal/store"
)

const visitorRetentionMonths = 12

// Paths that are never counted as page views.
var untrackedPrefixes = []string{
	"/static/",
	"/images/",
	"/favicon",
	"/privacy",
	"/contact",
	"/healthz",
}

// visitorTracker records page views with hashed IPs.
type visitorTracker struct {
	store *store.Store
	salt  string
	log   zerolog.Logger
	now   func() time.Time
	wg    sync.WaitGroup
}

func newVisitorTracker(st *store.Store, log zerolog.Logger) (*visitorTracker, error) {
	salt, err := generateSalt()
	if err != nil {
		return nil, err
	}
	return &visitorTracker{
		store: st,
		salt:  salt,
		log:   log.With().Str("component", "visitors").Logger(),
		now:   time.Now,
	}, nil
}

func generateSalt() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate hashing salt: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// hashIP is consistent per IP for the lifetime of the process.
func (t *visitorTracker) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + t.salt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

// Middleware records the page view in the background and never delays the
// response.
func (t *visitorTracker) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !tracked(path) || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		visit := store.Visit{
			HashedIP:  t.hashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
			Timestamp: t.now(),
		}
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			if err := t.store.RecordVisit(context.Background(), visit); err != nil {
				t.log.Error().Err(err).Msg("error recording visitor")
			}
		}()
		c.Next()
	}
}

func tracked(path string) bool {
	for _, prefix := range untrackedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// Wait blocks until background writes have finished.
func (t *visitorTracker) Wait() {
	t.wg.Wait()
}

// RecordAttempt stores the outcome of a contact delivery. It is installed
// as the flows' attempt hook.
func (t *visitorTracker) RecordAttempt(a contact.Attempt) {
	err := t.store.RecordAttempt(context.Background(), store.Attempt{
		ID:       a.ID.String(),
		Status:   a.Status.String(),
		Started:  a.Started,
		Finished: a.Finished,
	})
	if err != nil {
		t.log.Error().Err(err).Msg("error recording contact attempt")
	}
}

// cleanupOldVisitors removes records past the retention window.
func cleanupOldVisitors(ctx context.Context, st *store.Store, now time.Time, log zerolog.Logger) (int64, error) {
	removed, err := st.CleanupVisitors(ctx, now.AddDate(0, -visitorRetentionMonths, 0))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msgf("privacy cleanup: removed visitor records older than %d months", visitorRetentionMonths)
	}
	return removed, nil
}
