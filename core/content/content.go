// Package content loads the static portal content shipped as YAML.
package content

import (
	"io/fs"
	"path"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	PortalFile  = "portal.yaml"
	ModulesFile = "modules.yaml"
	QuizFile    = "quiz.yaml"
)

type (
	MenuItem struct {
		Key      string `yaml:"key" json:"key"`
		Label    string `yaml:"label" json:"label"`
		Subtitle string `yaml:"subtitle" json:"subtitle"`
		Path     string `yaml:"path" json:"path"`
	}

	Banner struct {
		Image    string `yaml:"image" json:"image"`
		Category string `yaml:"category" json:"category"`
		Title    string `yaml:"title" json:"title"`
		Content  string `yaml:"content" json:"content"`
	}

	Contact struct {
		Name  string `yaml:"name" json:"name"`
		Phone string `yaml:"phone" json:"phone"`
		URL   string `yaml:"-" json:"url"`
	}

	Info struct {
		Title string `yaml:"title" json:"title"`
		URL   string `yaml:"url" json:"url"`
	}

	SelfHelp struct {
		Title              string `yaml:"title" json:"title"`
		Subtitle           string `yaml:"subtitle" json:"subtitle"`
		VideoTitle         string `yaml:"video_title" json:"video_title"`
		VideoURL           string `yaml:"video_url" json:"video_url"`
		JournalTitle       string `yaml:"journal_title" json:"journal_title"`
		JournalPlaceholder string `yaml:"journal_placeholder" json:"journal_placeholder"`
	}

	// Portal is the static content of the home screen and the side pages.
	Portal struct {
		Greeting      string     `yaml:"greeting" json:"greeting"`
		Hero          string     `yaml:"hero" json:"hero"`
		Services      []MenuItem `yaml:"services" json:"services"`
		CounselorLink MenuItem   `yaml:"counselor_link" json:"counselor_link"`
		Banners       []Banner   `yaml:"banners" json:"banners"`
		Contacts      []Contact  `yaml:"contacts" json:"contacts"`
		Info          Info       `yaml:"info" json:"info"`
		SelfHelp      SelfHelp   `yaml:"self_help" json:"self_help"`
	}
)

// WhatsAppURL is the chat deep link of a phone number in international format.
func WhatsAppURL(phone string) string {
	return "https://wa.me/" + phone
}

// Decode reads the YAML file dir/name of fsys into out.
func Decode(fsys fs.FS, dir, name string, out interface{}) error {
	data, err := fs.ReadFile(fsys, path.Join(dir, name))
	if err != nil {
		return errors.Wrapf(err, "reading %s", name)
	}
	if err = yaml.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decoding %s", name)
	}
	return nil
}

// LoadPortal reads the portal content of dir.
func LoadPortal(fsys fs.FS, dir string) (*Portal, error) {
	p := new(Portal)
	if err := Decode(fsys, dir, PortalFile, p); err != nil {
		return nil, err
	}
	for i := range p.Contacts {
		p.Contacts[i].URL = WhatsAppURL(p.Contacts[i].Phone)
	}
	return p, nil
}

// Home is the student landing page. Counselors also get the dashboard link.
type Home struct {
	Greeting      string     `json:"greeting"`
	Name          string     `json:"name"`
	Hero          string     `json:"hero"`
	Services      []MenuItem `json:"services"`
	CounselorLink *MenuItem  `json:"counselor_link,omitempty"`
	Banners       []Banner   `json:"banners"`
}

func (p *Portal) Home(name string, counselor bool) Home {
	h := Home{
		Greeting: p.Greeting,
		Name:     name,
		Hero:     p.Hero,
		Services: p.Services,
		Banners:  p.Banners,
	}
	if counselor {
		link := p.CounselorLink
		h.CounselorLink = &link
	}
	return h
}
