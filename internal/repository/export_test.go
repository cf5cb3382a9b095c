package repository

import "github.com/jackc/pgx/v5/pgxpool"

// SharedPool exposes the integration database to the repository_test package.
func SharedPool() *pgxpool.Pool { return testPool }
