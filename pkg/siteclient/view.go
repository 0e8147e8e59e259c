package siteclient

import "time"

const (
	NoProjectsPlaceholder = "No projects available yet."
	NoClientsPlaceholder  = "No clients available yet."
)

// Card is one tile of a public grid
type Card struct {
	Title    string
	Subtitle string
	Body     string
	Image    string
}

// Section is one block of the public page. Grid sections have Cards or a
// Placeholder; form sections have neither.
type Section struct {
	ID          string
	Title       string
	Cards       []Card
	Placeholder string
	Form        bool
}

// Table is one tab of the admin panel
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// PublicSections renders the landing page from current view state
func (s *Site) PublicSections() []Section {
	projects := s.Projects()
	clients := s.Clients()

	projectSection := Section{ID: "projects", Title: "Our Projects"}
	for _, p := range projects {
		projectSection.Cards = append(projectSection.Cards, Card{Title: p.Name, Body: p.Description, Image: p.Image})
	}
	if len(projectSection.Cards) == 0 {
		projectSection.Placeholder = NoProjectsPlaceholder
	}

	clientSection := Section{ID: "clients", Title: "Happy Clients"}
	for _, c := range clients {
		clientSection.Cards = append(clientSection.Cards, Card{
			Title:    c.Name,
			Subtitle: c.Designation,
			Body:     c.Description,
			Image:    c.Image,
		})
	}
	if len(clientSection.Cards) == 0 {
		clientSection.Placeholder = NoClientsPlaceholder
	}

	return []Section{
		projectSection,
		clientSection,
		{ID: "contact", Title: "Get In Touch", Form: true},
		{ID: "newsletter", Title: "Subscribe to Our Newsletter", Form: true},
	}
}

// AdminTables renders one table per kind; nil while the admin panel is closed
func (s *Site) AdminTables() []Table {
	if !s.AdminOpen() {
		return nil
	}

	projects := Table{Title: "All Projects", Headers: []string{"Image", "Name", "Description"}}
	for _, p := range s.Projects() {
		projects.Rows = append(projects.Rows, []string{p.Image, p.Name, p.Description})
	}

	clients := Table{Title: "All Clients", Headers: []string{"Image", "Name", "Designation", "Description"}}
	for _, c := range s.Clients() {
		clients.Rows = append(clients.Rows, []string{c.Image, c.Name, c.Designation, c.Description})
	}

	contacts := Table{Title: "Contact Form Submissions", Headers: []string{"Full Name", "Email", "Mobile", "City", "Submitted Date"}}
	for _, c := range s.Contacts() {
		contacts.Rows = append(contacts.Rows, []string{c.Name, c.Email, c.Phone, c.City, formatDate(c.CreatedAt)})
	}

	subs := Table{Title: "Newsletter Subscriptions", Headers: []string{"Email Address", "Subscribed Date"}}
	for _, sub := range s.Subscriptions() {
		subs.Rows = append(subs.Rows, []string{sub.Email, formatDate(sub.SubscribedAt)})
	}

	return []Table{projects, clients, contacts, subs}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02")
}
