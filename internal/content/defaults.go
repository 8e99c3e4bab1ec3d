package content

import "slices"

// Default returns the built-in site used when no site.toml overrides it.
// Experience is most recent first.
func Default() *Site {
	site := &Site{
		Profile: Profile{
			Name:     "Alex Rivera",
			Title:    "Software Engineer",
			Tagline:  "I build small, sturdy tools and the services behind them.",
			About:    "I started out fixing other people's computers and ended up writing the software that runs on them. These days I work across the stack: terminal tools, HTTP services, and the occasional data pipeline. I care about software that is boring to operate and pleasant to use.",
			Location: "Remote",
			GitHub:   "https://github.com/alexrivera",
			CTA:      "Ask me anything",
		},
		// Listed chronologically; reversed below.
		Experience: []Experience{
			{
				ID:          "line-cook",
				Date:        "Feb 2018 - Mar 2020",
				Title:       "Line Cook",
				Company:     "Chowtime",
				Description: "Worked a high-volume kitchen line and met tight service windows during peak hours.",
				Icon:        "cook",
			},
			{
				ID:          "support",
				Date:        "Apr 2020 - Jul 2022",
				Title:       "Technical Support Specialist",
				Company:     "Lenin Computer Inc.",
				Description: "Primary escalation point for hardware and software issues; cut resolution time by 15%.",
				Icon:        "support",
			},
			{
				ID:          "consultant",
				Date:        "Sep 2023 - Aug 2024",
				Title:       "Owner / IT Consultant",
				Company:     "Starlite IT Solutions",
				Description: "Ran the business end to end, from custom builds to on-site diagnostics.",
				Icon:        "consultant",
			},
			{
				ID:          "engineer",
				Date:        "Sep 2024 - Present",
				Title:       "Software Engineer",
				Company:     "Independent",
				Description: "Building web services, terminal tools and AI-assisted developer tooling for small teams.",
				Icon:        "code",
			},
		},
		Projects: []Project{
			{
				Title:       "folio",
				Description: "This portfolio: a terminal UI and a small web server sharing one content source.",
				Tech:        []string{"Go", "Bubble Tea", "SQLite"},
			},
			{
				Title:       "Sxentrie",
				Description: "A retrieval-augmented code navigator that answers questions about a GitHub repository.",
				Tech:        []string{"TypeScript", "RAG", "Vector search"},
			},
			{
				Title:       "LocalHire",
				Description: "An MVP job board for local businesses, shipped in two weeks.",
				Tech:        []string{"Rails", "PostgreSQL"},
			},
		},
		Testimonials: []Testimonial{
			{
				Quote:  "I needed someone who could turn my messy ideas into working code. The MVP shipped in two weeks and it still just works.",
				Author: Author{Name: "Claire Uy", Title: "LocalHire PH"},
			},
			{
				Quote:  "Clean, documented code that integrated with our APIs without a dependency nightmare.",
				Author: Author{Name: "Marcus R.", Title: "DataSync"},
			},
		},
		Stack: []Tech{
			{Name: "Go"},
			{Name: "TypeScript"},
			{Name: "Python"},
			{Name: "Rails"},
			{Name: "PostgreSQL"},
			{Name: "SQLite"},
			{Name: "Docker"},
		},
	}
	slices.Reverse(site.Experience)
	return site
}
