package siteclient

// ProjectForm is the admin "Add Project" form
type ProjectForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func (f *ProjectForm) Reset() { *f = ProjectForm{} }

// ClientForm is the admin "Add Client" form
type ClientForm struct {
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func (f *ClientForm) Reset() { *f = ClientForm{} }

// ContactForm is the public "Get In Touch" form
type ContactForm struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	City  string `json:"city"`
}

func (f *ContactForm) Reset() { *f = ContactForm{} }

// NewsletterForm is the public subscribe form
type NewsletterForm struct {
	Email string `json:"email"`
}

func (f *NewsletterForm) Reset() { *f = NewsletterForm{} }

// Forms groups the input state of every form on the site
type Forms struct {
	Project    ProjectForm
	Client     ClientForm
	Contact    ContactForm
	Newsletter NewsletterForm
}
