package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks if the configuration is usable for the current environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "is required"})
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET", "is required"})
	}
	if cfg.Env == Production && len(cfg.JWTSecret) < 32 {
		errs = append(errs, ValidationError{"JWT_SECRET", "must be at least 32 characters in production"})
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBHost == "" {
			errs = append(errs, ValidationError{"DB_HOST", "is required for postgres"})
		}
		if cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_NAME", "is required for postgres"})
		}
		if cfg.DBUser == "" {
			errs = append(errs, ValidationError{"DB_USER", "is required for postgres"})
		}
		if cfg.Env != Development && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"DB_PASSWORD", "is required outside development"})
		}
	case DriverSQLite:
		if cfg.Env == Production {
			errs = append(errs, ValidationError{"DB_DRIVER", "sqlite is not supported in production"})
		}
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "is required for sqlite"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unknown driver %q", cfg.DBDriver)})
	}

	switch cfg.ImageStorage {
	case StorageLocal:
		if cfg.MediaRoot == "" {
			errs = append(errs, ValidationError{"MEDIA_ROOT", "is required for local image storage"})
		}
	case StorageS3:
		if cfg.S3BucketName == "" {
			errs = append(errs, ValidationError{"S3_BUCKET_NAME", "is required for s3 image storage"})
		}
	default:
		errs = append(errs, ValidationError{"IMAGE_STORAGE", fmt.Sprintf("unknown storage %q", cfg.ImageStorage)})
	}

	for field, v := range map[string]int{
		"RECIPES_PAGE_SIZE":   cfg.RecipesPageSize,
		"USERS_PAGE_SIZE":     cfg.UsersPageSize,
		"CATALOG_PAGE_SIZE":   cfg.CatalogPageSize,
		"RECIPE_CREATE_LIMIT": cfg.RecipeCreateLimit,
	} {
		if v < 1 {
			errs = append(errs, ValidationError{field, "must be positive"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
