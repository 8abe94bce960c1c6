package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates every table the API needs. Statements are idempotent so
// Migrate can run on each start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(254) NOT NULL,
		username VARCHAR(150) NOT NULL,
		first_name VARCHAR(150) NOT NULL DEFAULT '',
		last_name VARCHAR(150) NOT NULL DEFAULT '',
		phone_number VARCHAR(20) NULL,
		profile_image VARCHAR(255) NULL,
		bio TEXT NULL,
		password_hash VARCHAR(255) NOT NULL,
		is_staff TINYINT(1) NOT NULL DEFAULT 0,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		date_joined DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email),
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS homestay_images (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		image VARCHAR(255) NOT NULL,
		description TEXT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS homestay_families (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		head_of_family VARCHAR(200) NOT NULL,
		contact_number VARCHAR(20) NOT NULL,
		email VARCHAR(254) NULL,
		description TEXT NOT NULL,
		address TEXT NOT NULL,
		featured_image VARCHAR(255) NOT NULL,
		amenities TEXT NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_homestay_families_active (is_active)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS homestay_family_gallery (
		family_id BIGINT UNSIGNED NOT NULL,
		image_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (family_id, image_id),
		CONSTRAINT fk_family_gallery_family FOREIGN KEY (family_id) REFERENCES homestay_families(id) ON DELETE CASCADE,
		CONSTRAINT fk_family_gallery_image FOREIGN KEY (image_id) REFERENCES homestay_images(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS rooms (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		homestay_id BIGINT UNSIGNED NOT NULL,
		name VARCHAR(200) NOT NULL,
		description TEXT NOT NULL,
		capacity INT UNSIGNED NOT NULL,
		price_per_night_cents BIGINT NOT NULL,
		featured_image VARCHAR(255) NOT NULL,
		amenities TEXT NOT NULL,
		is_available TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_rooms_homestay (homestay_id),
		CONSTRAINT fk_rooms_homestay FOREIGN KEY (homestay_id) REFERENCES homestay_families(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS room_gallery (
		room_id BIGINT UNSIGNED NOT NULL,
		image_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (room_id, image_id),
		CONSTRAINT fk_room_gallery_room FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE,
		CONSTRAINT fk_room_gallery_image FOREIGN KEY (image_id) REFERENCES homestay_images(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		room_id BIGINT UNSIGNED NOT NULL,
		check_in_date DATE NOT NULL,
		check_out_date DATE NOT NULL,
		number_of_guests INT UNSIGNED NOT NULL,
		special_requests TEXT NULL,
		total_price_cents BIGINT NOT NULL,
		status ENUM('pending','confirmed','cancelled','completed') NOT NULL DEFAULT 'pending',
		booking_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_bookings_room_dates (room_id, status, check_in_date, check_out_date),
		KEY idx_bookings_user (user_id),
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_bookings_room FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE,
		CONSTRAINT chk_bookings_dates CHECK (check_out_date > check_in_date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reviews (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		homestay_id BIGINT UNSIGNED NOT NULL,
		booking_id BIGINT UNSIGNED NULL,
		rating TINYINT UNSIGNED NOT NULL,
		comment TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_reviews_booking (booking_id),
		KEY idx_reviews_homestay (homestay_id),
		CONSTRAINT fk_reviews_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_reviews_homestay FOREIGN KEY (homestay_id) REFERENCES homestay_families(id) ON DELETE CASCADE,
		CONSTRAINT fk_reviews_booking FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE SET NULL,
		CONSTRAINT chk_reviews_rating CHECK (rating BETWEEN 1 AND 5)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS village_categories (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		slug VARCHAR(100) NOT NULL,
		description TEXT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_village_categories_slug (slug)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS cultural_events (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		slug VARCHAR(200) NOT NULL,
		category_id BIGINT UNSIGNED NOT NULL,
		description TEXT NOT NULL,
		featured_image VARCHAR(255) NOT NULL,
		importance TEXT NULL,
		season VARCHAR(100) NULL,
		video_url VARCHAR(500) NULL,
		is_featured TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_cultural_events_slug (slug),
		CONSTRAINT fk_cultural_events_category FOREIGN KEY (category_id) REFERENCES village_categories(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS food_items (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		slug VARCHAR(200) NOT NULL,
		description TEXT NOT NULL,
		ingredients TEXT NOT NULL,
		preparation TEXT NOT NULL,
		featured_image VARCHAR(255) NOT NULL,
		cultural_significance TEXT NULL,
		is_vegetarian TINYINT(1) NOT NULL DEFAULT 0,
		is_featured TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_food_items_slug (slug)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS lifestyle_elements (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		slug VARCHAR(200) NOT NULL,
		description TEXT NOT NULL,
		featured_image VARCHAR(255) NOT NULL,
		is_featured TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_lifestyle_elements_slug (slug)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS ok_baji_stories (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		slug VARCHAR(200) NOT NULL,
		year INT NULL,
		story TEXT NOT NULL,
		impact TEXT NULL,
		featured_image VARCHAR(255) NOT NULL,
		is_featured TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_ok_baji_stories_slug (slug)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS gallery_items (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		category_id BIGINT UNSIGNED NOT NULL,
		description TEXT NULL,
		image VARCHAR(255) NOT NULL,
		location VARCHAR(200) NULL,
		date_taken DATE NULL,
		is_featured TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_gallery_items_category FOREIGN KEY (category_id) REFERENCES village_categories(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS testimonials (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		country VARCHAR(100) NOT NULL,
		message TEXT NOT NULL,
		photo VARCHAR(255) NULL,
		section VARCHAR(50) NULL,
		item_id BIGINT UNSIGNED NULL,
		is_featured TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_testimonials_section (section, item_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS highlight_items (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		section VARCHAR(50) NOT NULL,
		title VARCHAR(200) NOT NULL,
		description TEXT NULL,
		image VARCHAR(255) NULL,
		link_url VARCHAR(500) NULL,
		display_order INT NOT NULL DEFAULT 0,
		is_featured TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_highlight_items_section (section, display_order)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
