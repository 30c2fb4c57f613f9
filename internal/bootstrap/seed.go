package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/poojakit/poojakit-backend/internal/catalog"
	"github.com/poojakit/poojakit-backend/internal/users"
	"github.com/poojakit/poojakit-backend/pkg/config"
	"github.com/poojakit/poojakit-backend/pkg/db/models"
	"github.com/poojakit/poojakit-backend/pkg/logger"
	"github.com/poojakit/poojakit-backend/pkg/security"
)

// defaultAdminPassword is the out-of-the-box bootstrap credential. Deployments
// that leave it in place get a loud warning at startup.
const defaultAdminPassword = "admin-1234"

// defaultProducts is the starter catalog inserted on first run when the
// products table is empty.
var defaultProducts = []models.Product{
	{ID: "KIT-PRM-01", Title: "Basic Pooja Kit (Small)", Price: 249, Description: "Essential items for daily pooja: agarbatti, kumkum, camphor and cotton wicks."},
	{ID: "KIT-FAM-02", Title: "Family Pooja Kit (Medium)", Price: 549, Description: "Everything in the basic kit plus diyas, sandalwood paste and a puja thali."},
	{ID: "KIT-DEL-03", Title: "Deluxe Pooja Kit (Large)", Price: 999, Description: "Complete festival-ready kit with brass diya, dry fruits and premium incense."},
}

// Seeder provisions the first-run admin account and starter catalog.
type Seeder struct {
	users       *users.Repository
	catalog     *catalog.Repository
	cfg         config.BootstrapConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// NewSeeder builds a seeder from the repositories it writes through.
func NewSeeder(userRepo *users.Repository, catalogRepo *catalog.Repository, cfg config.BootstrapConfig, passwordCfg config.PasswordConfig, logg *logger.Logger) (*Seeder, error) {
	if userRepo == nil || catalogRepo == nil {
		return nil, fmt.Errorf("user and catalog repositories are required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Seeder{
		users:       userRepo,
		catalog:     catalogRepo,
		cfg:         cfg,
		passwordCfg: passwordCfg,
		logg:        logg,
	}, nil
}

// Run is idempotent: the admin account is created only when its email is
// absent, and products only when the catalog is empty.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.seedAdmin(ctx); err != nil {
		return err
	}
	if s.cfg.SeedProducts {
		if err := s.seedProducts(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedAdmin(ctx context.Context) error {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		s.logg.Info(ctx, "bootstrap admin disabled, no credentials configured")
		return nil
	}

	if s.cfg.AdminPassword == defaultAdminPassword {
		s.logg.Warn(ctx, "bootstrap admin is using the default password, rotate it before exposing this deployment")
	}

	_, err := s.users.FindByEmail(ctx, s.cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup bootstrap admin: %w", err)
	}

	hash, err := security.HashPassword(s.cfg.AdminPassword, s.passwordCfg)
	if err != nil {
		return fmt.Errorf("hash bootstrap admin password: %w", err)
	}

	if _, err := s.users.Create(ctx, users.CreateUserDTO{
		Name:         "Admin",
		Email:        s.cfg.AdminEmail,
		PasswordHash: hash,
		IsAdmin:      true,
	}); err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}

	s.logg.Info(s.logg.WithField(ctx, "email", s.cfg.AdminEmail), "bootstrap admin created")
	return nil
}

func (s *Seeder) seedProducts(ctx context.Context) error {
	count, err := s.catalog.Count(ctx)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	if err := s.catalog.CreateBatch(ctx, defaultProducts); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	s.logg.Info(s.logg.WithField(ctx, "count", len(defaultProducts)), "starter catalog seeded")
	return nil
}
