// Package migration loads catalogue and user fixtures from JSON files.
package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"storefront-functions/internal/models"
	"storefront-functions/internal/repositories"
)

const (
	productsFile = "products.json"
	usersFile    = "users.json"
)

// JSONProduct is one entry of products.json
type JSONProduct struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

// JSONUser is one entry of users.json
type JSONUser struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// SeedResult contains the results of a seed run
type SeedResult struct {
	ProductsProcessed int
	UsersProcessed    int
	Skipped           int
	Warnings          []string
}

// JSONSeeder inserts fixtures from a directory holding products.json and
// users.json. Either file may be absent.
type JSONSeeder struct {
	repos    *repositories.RepositoryContainer
	jsonPath string
	logger   *logrus.Logger
}

// NewJSONSeeder creates a new JSON seeder
func NewJSONSeeder(repos *repositories.RepositoryContainer, jsonPath string, logger *logrus.Logger) *JSONSeeder {
	if logger == nil {
		logger = logrus.New()
	}
	return &JSONSeeder{
		repos:    repos,
		jsonPath: jsonPath,
		logger:   logger,
	}
}

// Seed inserts every fixture in one transaction. Entries whose id already
// exists are skipped; any other failure rolls the whole run back.
func (s *JSONSeeder) Seed(ctx context.Context) (*SeedResult, error) {
	s.logger.WithField("path", s.jsonPath).Info("Starting JSON seed...")

	var products []JSONProduct
	if err := s.readFile(productsFile, &products); err != nil {
		return nil, err
	}

	var users []JSONUser
	if err := s.readFile(usersFile, &users); err != nil {
		return nil, err
	}

	result := &SeedResult{Warnings: make([]string, 0)}

	err := s.repos.Transactions.WithTransaction(ctx, func(ctx context.Context) error {
		for i, p := range products {
			product := models.NewProduct(p.Name, p.Price, p.ImageURL)
			if id := strings.TrimSpace(p.ID); id != "" {
				product.ID = id
			}

			if err := product.Validate(); err != nil {
				return fmt.Errorf("%s entry %d: %w", productsFile, i, err)
			}

			if err := s.repos.ProductRepo.Create(ctx, product); err != nil {
				if repositories.IsDuplicate(err) {
					s.skip(result, "product", product.ID)
					continue
				}
				return fmt.Errorf("failed to seed product %s: %w", product.ID, err)
			}
			result.ProductsProcessed++
		}

		for i, u := range users {
			user := models.NewUser(u.Name)
			if id := strings.TrimSpace(u.ID); id != "" {
				user.ID = id
			}

			if err := user.Validate(); err != nil {
				return fmt.Errorf("%s entry %d: %w", usersFile, i, err)
			}

			if err := s.repos.UserRepo.Create(ctx, user); err != nil {
				if repositories.IsDuplicate(err) {
					s.skip(result, "user", user.ID)
					continue
				}
				return fmt.Errorf("failed to seed user %s: %w", user.ID, err)
			}
			result.UsersProcessed++
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"products": result.ProductsProcessed,
		"users":    result.UsersProcessed,
		"skipped":  result.Skipped,
	}).Info("JSON seed completed")

	return result, nil
}

func (s *JSONSeeder) skip(result *SeedResult, entity, id string) {
	result.Skipped++
	result.Warnings = append(result.Warnings, fmt.Sprintf("%s %s already exists, skipped", entity, id))
	s.logger.WithFields(logrus.Fields{"entity": entity, "id": id}).Debug("Seed entry already exists")
}

func (s *JSONSeeder) readFile(name string, dst interface{}) error {
	path := filepath.Join(s.jsonPath, name)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.WithField("file", path).Debug("Seed file not found, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
