package atelier

import "time"

// seedSnapshot builds the default content installed when the file store
// starts with no snapshot. Seed records carry stable ids so repeated first
// runs produce the same data set.
func seedSnapshot() *snapshot {
	now := time.Now().UTC()

	essays := []struct {
		slug, title, date, readingTime, body string
		tags                                 []string
	}{
		{
			slug: "on-simplicity", title: "On Simplicity and Clarity",
			date: "March 15, 2024", readingTime: "5 min read",
			body: "Exploring how simplicity in thought and expression leads to deeper understanding and more meaningful communication. When we strip away the unnecessary, what remains is often more powerful than what we started with.",
			tags: []string{"Philosophy", "Writing", "Minimalism"},
		},
		{
			slug: "the-nature-of-creativity", title: "The Nature of Creativity",
			date: "February 28, 2024", readingTime: "8 min read",
			body: "An examination of what it means to create, and how constraints can paradoxically enhance creative freedom. True creativity emerges not from unlimited possibilities, but from thoughtful limitations.",
			tags: []string{"Creativity", "Philosophy", "Art"},
		},
		{
			slug: "digital-minimalism", title: "Digital Minimalism in Practice",
			date: "February 10, 2024", readingTime: "6 min read",
			body: "Practical approaches to reducing digital clutter and reclaiming attention in an age of constant connectivity. The goal is not to reject technology, but to use it intentionally.",
			tags: []string{"Technology", "Minimalism", "Productivity"},
		},
		{
			slug: "on-reading", title: "On Reading and Understanding",
			date: "January 22, 2024", readingTime: "7 min read",
			body: "Reading is not merely consuming words. It is an active dialogue with ideas across time. How we read shapes how we think, and ultimately, who we become.",
			tags: []string{"Reading", "Learning", "Philosophy"},
		},
		{
			slug: "the-examined-life", title: "The Examined Life in Modern Times",
			date: "January 5, 2024", readingTime: "9 min read",
			body: "Socrates said the unexamined life is not worth living. But what does examination mean in an age of information overload and constant distraction? A meditation on self-reflection.",
			tags: []string{"Philosophy", "Self-Improvement", "Ancient Wisdom"},
		},
	}

	works := []struct{ slug, title string }{
		{"cognitive-frameworks-digital-minimalism", "Cognitive Frameworks for Understanding Digital Minimalism"},
		{"epistemology-of-simplicity", "The Epistemology of Simplicity: Knowledge Through Reduction"},
		{"attention-economics-ethics-design", "Attention Economics and the Ethics of Design"},
		{"creativity-under-constraint", "Creativity Under Constraint: A Philosophical Analysis"},
		{"phenomenology-reading-digital-age", "The Phenomenology of Reading in the Digital Age"},
		{"simplicity-epistemic-virtue", "Simplicity as Epistemic Virtue"},
	}

	posts := []struct{ title, date, body string }{
		{"LinkedIn Post - March 20", "March 20, 2024", "Your LinkedIn post content will appear here. You can embed the actual LinkedIn post or display the text content."},
		{"LinkedIn Post - March 15", "March 15, 2024", "Another LinkedIn post. Replace this with your actual post text or embed code."},
		{"LinkedIn Post - March 10", "March 10, 2024", "More LinkedIn content here. You can add as many posts as you want."},
	}

	quotes := []struct{ text, author string }{
		{"The unexamined life is not worth living.", "Socrates"},
		{"I would have written a shorter letter, but I did not have the time.", "Blaise Pascal"},
		{"Simplicity is the ultimate sophistication.", "Leonardo da Vinci"},
		{"The ability to simplify means to eliminate the unnecessary so that the necessary may speak.", "Hans Hofmann"},
		{"Perfection is achieved, not when there is nothing more to add, but when there is nothing left to take away.", "Antoine de Saint-Exupéry"},
		{"Make it work, make it right, make it fast.", "Kent Beck"},
		{"If you can't explain it simply, you don't understand it well enough.", "Albert Einstein"},
		{"In the beginner's mind there are many possibilities, but in the expert's there are few.", "Shunryu Suzuki"},
		{"We are what we repeatedly do. Excellence, then, is not an act, but a habit.", "Aristotle"},
		{"The first draft of anything is garbage.", "Ernest Hemingway"},
	}

	s := &snapshot{}

	for _, e := range essays {
		at := parseSeedDate(e.date, now)
		s.Essays = append(s.Essays, Essay{
			ID:          "essay-" + e.slug,
			Title:       e.title,
			Slug:        e.slug,
			Content:     e.body,
			Summary:     e.body,
			Date:        e.date,
			ReadingTime: e.readingTime,
			Tags:        e.tags,
			CreatedAt:   at,
			UpdatedAt:   at,
		})
	}

	for i, w := range works {
		// staggered so list order is stable across restarts
		at := now.Add(-time.Duration(i) * time.Second)
		s.Works = append(s.Works, Work{
			ID:        "work-" + w.slug,
			Title:     w.title,
			Slug:      w.slug,
			Content:   "Academic work on " + w.title,
			Date:      "2024",
			CreatedAt: at,
			UpdatedAt: at,
		})
	}

	for i, p := range posts {
		at := parseSeedDate(p.date, now)
		s.BlogPosts = append(s.BlogPosts, BlogPost{
			ID:        "blog-" + Slugify(p.title),
			Title:     p.title,
			Slug:      Slugify(p.title),
			Content:   p.body,
			Date:      p.date,
			CreatedAt: at.Add(-time.Duration(i) * time.Second),
			UpdatedAt: at,
		})
	}

	for i, q := range quotes {
		s.Quotes = append(s.Quotes, Quote{
			ID:        newID(),
			Text:      q.text,
			Author:    q.author,
			CreatedAt: now.Add(-time.Duration(i) * time.Second),
			UpdatedAt: now,
		})
	}

	return s
}

// parseSeedDate turns a display date like "March 15, 2024" into a creation
// timestamp, falling back to now for unparseable values.
func parseSeedDate(s string, fallback time.Time) time.Time {
	if t, err := time.Parse("January 2, 2006", s); err == nil {
		return t.UTC()
	}
	return fallback
}
