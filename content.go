package main

// SkillGroup is one card in the skills section.
type SkillGroup struct {
	Title  string
	Skills []string
}

// Experience is one entry on the experience timeline.
type Experience struct {
	Title       string
	Company     string
	Period      string
	Description string
	Skills      []string
}

// Project is one showcase card.
type Project struct {
	Title       string
	Description string
	Tags        []string
	Image       string
	URL         string
}

// Link is a social or contact link in the contact section.
type Link struct {
	Label string
	Href  string
	Icon  string
}

// Portfolio is everything the home page renders apart from the contact form.
type Portfolio struct {
	Owner       string
	FullName    string
	Tagline     string
	Headline    string
	Intro       string
	ResumePath  string
	SkillsIntro string
	Skills      []SkillGroup
	Experience  []Experience
	Projects    []Project
	ContactNote string
	Links       []Link
}

var portfolio = Portfolio{
	Owner:      "Vamsi",
	FullName:   "Manoj Vamsi",
	Tagline:    "COMPUTER SCIENCE GRADUATE",
	Headline:   "I build digital experiences for the web.",
	ResumePath: "/static/Manoj Vamsi Dakamarri.pdf",
	Intro: `A passionate full-stack developer specializing in creating elegant, user-friendly applications with clean
	code and modern technologies.`,
	SkillsIntro: `My expertise spans across various technologies and frameworks, allowing me to build complete solutions
	from front-end to back-end.`,
	Skills: []SkillGroup{
		{Title: "Frontend Development", Skills: []string{"React", "Next.js", "TypeScript", "TailwindCSS", "Framer Motion"}},
		{Title: "Backend Development", Skills: []string{"Node.js", "Express", "Python", "PostgreSQL", "MongoDB"}},
		{Title: "Other Skills", Skills: []string{"Git", "Docker", "AWS", "CI/CD", "Testing"}},
	},
	Experience: []Experience{
		{
			Title:   "PoweBI & Tableau Intern",
			Company: "OceanApps Techonlogies PVT LTD.",
			Period:  "Jan 2025 - Apr 2025",
			Description: `Assisted in designing interactive dashboards and visual reports using Power BI and Tableau. Analyzed large
			datasets to extract actionable insights and supported data-driven decision-making for business operations.`,
			Skills: []string{"Power BI", "Tableau", "Data Visualization", "SQL", "Excel"},
		},
		{
			Title:   "QA Tester Intern",
			Company: "Wyreflow Techonologies",
			Period:  "Oct 2024 - Nov 2024",
			Description: `Performed manual and automated testing to identify bugs and ensure software quality across web and mobile
			applications. Collaborated with developers to reproduce issues, write test cases, and verify fixes for enhanced user experience.`,
			Skills: []string{"Manual Testing", "Automation Testing", "Test Cases", "Agile"},
		},
		{
			Title:   "AIML Intern",
			Company: "Q-bits Learning",
			Period:  "Jun 2024 - Aug 2024",
			Description: `Worked on developing and training machine learning models for real-world applications. Assisted in data
			preprocessing, model evaluation, and implementation of AI solutions using Python.`,
			Skills: []string{"Python", "Machine Learning", "Deep Learning", "NumPy"},
		},
	},
	Projects: []Project{
		{
			Title: "study-flow-tracker",
			Description: `A smart study timer and productivity tracker built with React and TailwindCSS, designed to help users
			manage focus sessions, breaks, and tasks seamlessly.`,
			Tags:  []string{"Next.js", "TypeScript", "Tailwind"},
			Image: "/images/E-C.png",
			URL:   "https://study-flow-tracker.vercel.app/",
		},
		{
			Title:       "Weather Dashboard",
			Description: "A weather application with location-based forecasts, interactive maps, and historical data visualization.",
			Tags:        []string{"React", "Chart.js", "Weather API", "Styled Components"},
			Image:       "/images/WD-1.svg",
			URL:         "https://weather-dahboard-92wg.vercel.app/",
		},
	},
	ContactNote: "Have a project in mind or want to discuss potential opportunities? I'd love to hear from you.",
	Links: []Link{
		{Label: "GitHub Profile", Href: "https://github.com/Manojvamsi7", Icon: "github"},
		{Label: "Email Me", Href: "mailto:manojvamsi.d07@gmail.com", Icon: "mail"},
		{Label: "LinkedIn Profile", Href: "https://linkedin.com/in/manoj-vamsi", Icon: "linkedin"},
	},
}
