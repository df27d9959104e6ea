package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL, verifies the connection and applies the schema.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	if err := applySchema(ctx, db); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

// applySchema creates the tables if they do not exist. The UNIQUE keys here
// are authoritative: application-level existence checks are a fast path and
// rely on these constraints to close write races.
func applySchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(150) NOT NULL,
			email VARCHAR(254) NOT NULL,
			first_name VARCHAR(150) NOT NULL DEFAULT '',
			last_name VARCHAR(150) NOT NULL DEFAULT '',
			bio TEXT NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'user',
			is_superuser TINYINT(1) NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_users_username (username),
			UNIQUE KEY uq_users_email (email)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS categories (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(256) NOT NULL,
			slug VARCHAR(50) NOT NULL,
			UNIQUE KEY uq_categories_name (name),
			UNIQUE KEY uq_categories_slug (slug)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS genres (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(256) NOT NULL,
			slug VARCHAR(50) NOT NULL,
			UNIQUE KEY uq_genres_name (name),
			UNIQUE KEY uq_genres_slug (slug)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS titles (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			year SMALLINT NOT NULL,
			description TEXT NOT NULL,
			category_id BIGINT UNSIGNED NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_titles_category (category_id),
			CONSTRAINT fk_titles_category FOREIGN KEY (category_id)
				REFERENCES categories (id) ON DELETE SET NULL
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS title_genres (
			title_id BIGINT UNSIGNED NOT NULL,
			genre_id BIGINT UNSIGNED NOT NULL,
			PRIMARY KEY (title_id, genre_id),
			CONSTRAINT fk_tg_title FOREIGN KEY (title_id)
				REFERENCES titles (id) ON DELETE CASCADE,
			CONSTRAINT fk_tg_genre FOREIGN KEY (genre_id)
				REFERENCES genres (id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			title_id BIGINT UNSIGNED NOT NULL,
			author_id BIGINT UNSIGNED NOT NULL,
			score TINYINT UNSIGNED NOT NULL,
			text TEXT NOT NULL,
			pub_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_reviews_author_title (author_id, title_id),
			KEY idx_reviews_title (title_id),
			KEY idx_reviews_pub_date (pub_date),
			CONSTRAINT fk_reviews_title FOREIGN KEY (title_id)
				REFERENCES titles (id) ON DELETE CASCADE,
			CONSTRAINT fk_reviews_author FOREIGN KEY (author_id)
				REFERENCES users (id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS comments (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			review_id BIGINT UNSIGNED NOT NULL,
			author_id BIGINT UNSIGNED NOT NULL,
			text TEXT NOT NULL,
			pub_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_comments_review (review_id),
			KEY idx_comments_pub_date (pub_date),
			CONSTRAINT fk_comments_review FOREIGN KEY (review_id)
				REFERENCES reviews (id) ON DELETE CASCADE,
			CONSTRAINT fk_comments_author FOREIGN KEY (author_id)
				REFERENCES users (id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
