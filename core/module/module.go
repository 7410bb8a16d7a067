// Package module serves the counseling reading modules.
package module

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/content"
)

const DefaultCategory = "Umum"

var (
	// errors
	ErrNotFound = errors.New("module not found")
)

type (
	Module struct {
		ID            int64     `json:"id" yaml:"id"`
		Title         string    `json:"title" yaml:"title"`
		Content       string    `json:"content" yaml:"content"`
		Category      string    `json:"category" yaml:"category"`
		CategoryLabel string    `json:"category_label" yaml:"-"`
		CreatedAt     null.Time `json:"created_at" yaml:"-"`
		Builtin       bool      `json:"builtin" yaml:"-"`
	}

	NewModule struct {
		Title    string `json:"title" validate:"notblank,max=200"`
		Content  string `json:"content" validate:"notblank"`
		Category string `json:"category" validate:"max=50"`
	}

	UpdateModule NewModule

	Repository interface {
		CreateModule(ctx context.Context, m Module) (Module, error)
		GetModule(ctx context.Context, id int64) (Module, error)
		// QueryModules returns the stored modules, newest first.
		QueryModules(ctx context.Context) ([]Module, error)
		UpdateModule(ctx context.Context, m Module) (Module, error)
		DeleteModule(ctx context.Context, id int64) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		logger   core.Logger
		builtin  []Module
	}
)

func (m *Module) decorate() {
	m.CategoryLabel = strings.Replace(m.Category, "_", " ", 1)
}

func (nm *NewModule) clean() {
	nm.Title = core.CleanString(nm.Title)
	nm.Content = strings.TrimSpace(nm.Content)
	nm.Category = core.CleanString(nm.Category)
	if nm.Category == "" {
		nm.Category = DefaultCategory
	}
}

// NewService loads the built-in modules from the content dir of fsys.
func NewService(repo Repository, validate *validator.Validate, logger core.Logger, fsys fs.FS, dir string) (*Service, error) {
	var builtin []Module
	if err := content.Decode(fsys, dir, content.ModulesFile, &builtin); err != nil {
		return nil, err
	}
	for i := range builtin {
		builtin[i].Builtin = true
		builtin[i].decorate()
	}
	return &Service{repo: repo, validate: validate, logger: logger, builtin: builtin}, nil
}

// List returns the stored modules, or the built-in ones when there are none or the store fails.
func (svc *Service) List(ctx context.Context) []Module {
	mods, err := svc.repo.QueryModules(ctx)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("querying modules, serving built-in ones: %v", err))
	}
	if err != nil || len(mods) == 0 {
		return svc.Builtin()
	}
	for i := range mods {
		mods[i].decorate()
	}
	return mods
}

func (svc *Service) Builtin() []Module {
	mods := make([]Module, len(svc.builtin))
	copy(mods, svc.builtin)
	return mods
}

// Get returns a stored module, falling back to the built-in module of that id.
func (svc *Service) Get(ctx context.Context, id int64) (Module, error) {
	m, err := svc.repo.GetModule(ctx, id)
	if err == nil {
		m.decorate()
		return m, nil
	}
	for _, b := range svc.builtin {
		if b.ID == id {
			return b, nil
		}
	}
	if errors.Cause(err) == ErrNotFound {
		return Module{}, ErrNotFound
	}
	return Module{}, errors.Wrap(err, "getting module")
}

func (svc *Service) Create(ctx context.Context, nm NewModule) (Module, error) {
	nm.clean()
	if err := svc.validate.Struct(nm); err != nil {
		return Module{}, err
	}
	m, err := svc.repo.CreateModule(ctx, Module{Title: nm.Title, Content: nm.Content, Category: nm.Category})
	if err != nil {
		return Module{}, errors.Wrap(err, "creating module")
	}
	m.decorate()
	return m, nil
}

func (svc *Service) Update(ctx context.Context, id int64, um UpdateModule) (Module, error) {
	nm := NewModule(um)
	nm.clean()
	if err := svc.validate.Struct(nm); err != nil {
		return Module{}, err
	}
	m, err := svc.repo.UpdateModule(ctx, Module{ID: id, Title: nm.Title, Content: nm.Content, Category: nm.Category})
	if err != nil {
		return Module{}, err
	}
	m.decorate()
	return m, nil
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	return svc.repo.DeleteModule(ctx, id)
}
