package main

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/manojvamsi/portfolio/internal/contact"
)

const sessionCookie = "contact_session"

// Banners shown above the contact form.
const (
	bannerNone    = ""
	bannerSuccess = "success"
	bannerError   = "error"
	bannerInvalid = "invalid"
	bannerPending = "pending"
)

// contactView is the data contact.html renders.
type contactView struct {
	Fields     contact.Fields
	Status     string
	Submitting bool
	Banner     string
	Missing    []string
}

func newContactView(snap contact.Snapshot, banner string) contactView {
	v := contactView{
		Fields:     snap.Fields,
		Status:     snap.Status.String(),
		Submitting: snap.Status == contact.StatusSubmitting,
		Banner:     banner,
	}
	if banner == bannerNone {
		switch snap.Status {
		case contact.StatusSuccess:
			v.Banner = bannerSuccess
		case contact.StatusError:
			v.Banner = bannerError
		}
	}
	return v
}

// contactResponse is the JSON body for API clients.
type contactResponse struct {
	Status  contact.Status `json:"status"`
	Fields  contact.Fields `json:"fields"`
	Error   string         `json:"error,omitempty"`
	Missing []string       `json:"missing,omitempty"`
}

// flowFor returns the visitor's flow, issuing a session cookie when needed.
func (s *server) flowFor(c *gin.Context) *contact.Flow {
	current, _ := c.Cookie(sessionCookie)
	id, flow := s.sessions.Acquire(current)
	if id != current {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, id, 0, "/", "", c.Request.TLS != nil, true)
	}
	return flow
}

func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

func (s *server) contactForm(c *gin.Context) {
	flow := s.flowFor(c)
	c.HTML(http.StatusOK, "contact.html", newContactView(flow.Snapshot(), bannerNone))
}

func (s *server) contactState(c *gin.Context) {
	snap := s.flowFor(c).Snapshot()
	c.JSON(http.StatusOK, contactResponse{Status: snap.Status, Fields: snap.Fields})
}

// contactField applies one keystroke/change event. The value comes from
// "value" or, as HTMX sends it, from the parameter named after the field.
func (s *server) contactField(c *gin.Context) {
	flow := s.flowFor(c)

	field, err := contact.ParseField(c.PostForm("field"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	value, ok := c.GetPostForm("value")
	if !ok {
		value = c.PostForm(string(field))
	}
	flow.UpdateField(field, value)
	c.Status(http.StatusNoContent)
}

func (s *server) contactSubmit(c *gin.Context) {
	flow := s.flowFor(c)

	// Fields absent from the request keep their stored values.
	updates := make(map[contact.Field]string)
	for _, field := range []contact.Field{contact.FieldName, contact.FieldEmail, contact.FieldSubject, contact.FieldMessage} {
		if value, ok := c.GetPostForm(string(field)); ok {
			updates[field] = value
		}
	}

	// A started delivery runs to completion even if the visitor goes away.
	err := flow.SubmitWith(context.WithoutCancel(c.Request.Context()), updates)
	snap := flow.Snapshot()

	status := http.StatusOK
	banner := bannerSuccess
	resp := contactResponse{Status: snap.Status, Fields: snap.Fields}

	var verr *contact.ValidationError
	var derr *contact.DeliveryError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		banner = bannerInvalid
		for _, f := range verr.Missing {
			resp.Missing = append(resp.Missing, string(f))
		}
		resp.Error = "Please fill in all required fields"
	case errors.Is(err, contact.ErrSubmissionInFlight):
		status = http.StatusConflict
		banner = bannerPending
		resp.Error = "Your message is still being sent"
	case errors.As(err, &derr):
		banner = bannerError
		resp.Error = "Sorry, there was an error sending your message. Please try again later."
	default:
		s.log.Error().Err(err).Msg("unexpected contact submission error")
		status = http.StatusInternalServerError
		banner = bannerError
		resp.Error = "Sorry, there was an error sending your message. Please try again later."
	}

	if wantsJSON(c) {
		c.JSON(status, resp)
		return
	}
	view := newContactView(snap, banner)
	view.Missing = resp.Missing
	c.HTML(status, "contact.html", view)
}

// contactEvents streams a snapshot after every change to the visitor's
// flow as server-sent events.
func (s *server) contactEvents(c *gin.Context) {
	flow := s.flowFor(c)

	// Keep only the newest pending snapshot so a slow reader never blocks
	// the flow.
	updates := make(chan contact.Snapshot, 1)
	cancel := flow.Subscribe(func(snap contact.Snapshot) {
		select {
		case updates <- snap:
		default:
			select {
			case <-updates:
			default:
			}
			updates <- snap
		}
	})
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.SSEvent("snapshot", flow.Snapshot())
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case snap := <-updates:
			c.SSEvent("snapshot", snap)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
