package content

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// topic is one thing the chat panel can answer about.
type topic struct {
	keywords string
	answer   func(*Site) string
}

var topics = []topic{
	{"experience work job career company role history", answerExperience},
	{"projects portfolio built build apps things made", answerProjects},
	{"stack tech tools languages skills technologies", answerStack},
	{"blog posts writing articles", answerBlog},
	{"about who bio background yourself", answerAbout},
	{"contact email hire reach message", answerContact},
	{"testimonials reviews clients feedback references", answerTestimonials},
}

type topicSource []topic

func (t topicSource) String(i int) string { return t[i].keywords }
func (t topicSource) Len() int            { return len(t) }

// Answer replies to a free-form question from the site's own content. Exact
// keyword hits pick the topic; when there are none, each word is fuzzy
// matched so typos still land somewhere sensible.
func (s *Site) Answer(question string) string {
	q := strings.ToLower(strings.TrimSpace(question))
	if q == "" {
		return "Ask me about my experience, projects, tech stack, or blog."
	}
	words := strings.FieldsFunc(q, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})

	if i := exactTopic(words); i >= 0 {
		return topics[i].answer(s)
	}

	best, bestScore := -1, 0
	for _, word := range words {
		if len(word) < 3 {
			continue
		}
		matches := fuzzy.FindFrom(word, topicSource(topics))
		if len(matches) == 0 {
			continue
		}
		if best < 0 || matches[0].Score > bestScore {
			best, bestScore = matches[0].Index, matches[0].Score
		}
	}
	if best < 0 {
		return fmt.Sprintf("I'm not sure about that one. Try asking about %s's experience, projects, or stack.", s.firstName())
	}
	return topics[best].answer(s)
}

// exactTopic returns the topic with the most keyword hits, earliest topic on
// ties, or -1.
func exactTopic(words []string) int {
	best, bestHits := -1, 0
	for i, t := range topics {
		hits := 0
		for _, kw := range strings.Fields(t.keywords) {
			for _, w := range words {
				if w == kw {
					hits++
				}
			}
		}
		if hits > bestHits {
			best, bestHits = i, hits
		}
	}
	return best
}

func (s *Site) firstName() string {
	if f := strings.Fields(s.Profile.Name); len(f) > 0 {
		return f[0]
	}
	return "me"
}

func answerExperience(s *Site) string {
	if len(s.Experience) == 0 {
		return "No experience entries yet."
	}
	cur := s.Experience[0]
	return fmt.Sprintf("Most recently: %s at %s (%s). %d roles in total, see the Experience section.",
		cur.Title, cur.Company, cur.Date, len(s.Experience))
}

func answerProjects(s *Site) string {
	if len(s.Projects) == 0 {
		return "No projects listed yet."
	}
	names := make([]string, len(s.Projects))
	for i, p := range s.Projects {
		names[i] = p.Title
	}
	return "Projects: " + strings.Join(names, ", ") + "."
}

func answerStack(s *Site) string {
	names := make([]string, len(s.Stack))
	for i, t := range s.Stack {
		names[i] = t.Name
	}
	if len(names) == 0 {
		return "No stack listed yet."
	}
	return "I work with " + strings.Join(names, ", ") + "."
}

func answerBlog(s *Site) string {
	if len(s.Posts) == 0 {
		return "No posts yet."
	}
	return fmt.Sprintf("Latest post: %q (%s). %d posts in the Blog section.", s.Posts[0].Title, s.Posts[0].Date, len(s.Posts))
}

func answerAbout(s *Site) string {
	if s.Profile.About != "" {
		return s.Profile.About
	}
	return s.Profile.Tagline
}

func answerContact(s *Site) string {
	if s.Profile.Email != "" {
		return "Reach me at " + s.Profile.Email + " or use the contact form."
	}
	return "Use the contact form and I'll get back to you."
}

func answerTestimonials(s *Site) string {
	if len(s.Testimonials) == 0 {
		return "No testimonials yet."
	}
	t := s.Testimonials[0]
	return fmt.Sprintf("%q, %s", t.Quote, t.Author.Name)
}
