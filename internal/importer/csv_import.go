package importer

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"reviewhub/internal/api/models"

	"gorm.io/gorm"
)

// Importer seeds the database from header-keyed CSV files. Files are loaded
// in foreign-key order; a missing file is skipped with a warning so partial
// data sets import cleanly.
type Importer struct {
	db     *gorm.DB
	logger *slog.Logger

	// CSV user ids are integers, the users table keys on uuid.
	userIDs map[int64]string
}

func New(db *gorm.DB, logger *slog.Logger) *Importer {
	return &Importer{
		db:      db,
		logger:  logger,
		userIDs: make(map[int64]string),
	}
}

// Run imports every known CSV file found under dir.
func (im *Importer) Run(dir string) error {
	steps := []struct {
		file string
		load func(rows []map[string]string) error
	}{
		{"users.csv", im.loadUsers},
		{"category.csv", im.loadCategories},
		{"genre.csv", im.loadGenres},
		{"titles.csv", im.loadTitles},
		{"genre_title.csv", im.loadGenreTitles},
		{"review.csv", im.loadReviews},
		{"comments.csv", im.loadComments},
	}

	for _, step := range steps {
		path := filepath.Join(dir, step.file)
		rows, err := readRows(path)
		if os.IsNotExist(err) {
			im.logger.Warn("csv_file_missing", "file", step.file)
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", step.file, err)
		}
		if err := step.load(rows); err != nil {
			return fmt.Errorf("%s: %w", step.file, err)
		}
		im.logger.Info("csv_file_imported", "file", step.file, "rows", len(rows))
	}
	return im.resetSequences()
}

// seededTables lists every table the importer fills with explicit primary
// keys, bypassing the serial sequence. genre_titles is absent: its rows are
// created without an id, so its sequence advances normally.
var seededTables = []string{
	"categories",
	"genres",
	"titles",
	"reviews",
	"comments",
}

// sequenceResets builds the statements that advance each serial sequence past
// the imported ids. Without them the first API-side insert after an import
// reuses an id already taken by a CSV row.
func sequenceResets() []string {
	statements := make([]string, 0, len(seededTables))
	for _, table := range seededTables {
		statements = append(statements, fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 1)) FROM %s",
			table, table,
		))
	}
	return statements
}

func (im *Importer) resetSequences() error {
	for _, statement := range sequenceResets() {
		if err := im.db.Exec(statement).Error; err != nil {
			return fmt.Errorf("reset sequence: %w", err)
		}
	}
	im.logger.Info("sequences_reset", "tables", len(seededTables))
	return nil
}

// readRows parses a CSV file into maps keyed by the header row.
func readRows(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(record) {
				row[key] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseInt(row map[string]string, key string) (int64, error) {
	v, err := strconv.ParseInt(row[key], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", key, err)
	}
	return v, nil
}

func parseTime(row map[string]string, key string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, row[key])
	if err != nil {
		return time.Time{}, fmt.Errorf("column %q: %w", key, err)
	}
	return t, nil
}

func (im *Importer) loadUsers(rows []map[string]string) error {
	for _, row := range rows {
		csvID, err := parseInt(row, "id")
		if err != nil {
			return err
		}
		user := models.User{
			Username:  row["username"],
			Email:     row["email"],
			Role:      models.Role(row["role"]),
			Bio:       row["bio"],
			FirstName: row["first_name"],
			LastName:  row["last_name"],
		}
		if err := im.db.Create(&user).Error; err != nil {
			return fmt.Errorf("user %q: %w", user.Username, err)
		}
		im.userIDs[csvID] = user.ID
	}
	return nil
}

func (im *Importer) loadCategories(rows []map[string]string) error {
	for _, row := range rows {
		id, err := parseInt(row, "id")
		if err != nil {
			return err
		}
		category := models.Category{ID: id, Name: row["name"], Slug: row["slug"]}
		if err := im.db.Create(&category).Error; err != nil {
			return fmt.Errorf("category %q: %w", category.Slug, err)
		}
	}
	return nil
}

func (im *Importer) loadGenres(rows []map[string]string) error {
	for _, row := range rows {
		id, err := parseInt(row, "id")
		if err != nil {
			return err
		}
		genre := models.Genre{ID: id, Name: row["name"], Slug: row["slug"]}
		if err := im.db.Create(&genre).Error; err != nil {
			return fmt.Errorf("genre %q: %w", genre.Slug, err)
		}
	}
	return nil
}

func (im *Importer) loadTitles(rows []map[string]string) error {
	for _, row := range rows {
		id, err := parseInt(row, "id")
		if err != nil {
			return err
		}
		year, err := parseInt(row, "year")
		if err != nil {
			return err
		}
		title := models.Title{ID: id, Name: row["name"], Year: int(year)}
		if row["category"] != "" {
			categoryID, err := parseInt(row, "category")
			if err != nil {
				return err
			}
			title.CategoryID = &categoryID
		}
		if err := im.db.Omit("Genres", "Category").Create(&title).Error; err != nil {
			return fmt.Errorf("title %q: %w", title.Name, err)
		}
	}
	return nil
}

func (im *Importer) loadGenreTitles(rows []map[string]string) error {
	for _, row := range rows {
		titleID, err := parseInt(row, "title_id")
		if err != nil {
			return err
		}
		genreID, err := parseInt(row, "genre_id")
		if err != nil {
			return err
		}
		link := models.GenreTitle{TitleID: titleID, GenreID: genreID}
		if err := im.db.Create(&link).Error; err != nil {
			return fmt.Errorf("title %d genre %d: %w", titleID, genreID, err)
		}
	}
	return nil
}

func (im *Importer) resolveAuthor(row map[string]string) (string, error) {
	csvID, err := parseInt(row, "author")
	if err != nil {
		return "", err
	}
	authorID, ok := im.userIDs[csvID]
	if !ok {
		return "", fmt.Errorf("unknown author id %d", csvID)
	}
	return authorID, nil
}

func (im *Importer) loadReviews(rows []map[string]string) error {
	for _, row := range rows {
		id, err := parseInt(row, "id")
		if err != nil {
			return err
		}
		titleID, err := parseInt(row, "title_id")
		if err != nil {
			return err
		}
		authorID, err := im.resolveAuthor(row)
		if err != nil {
			return err
		}
		score, err := parseInt(row, "score")
		if err != nil {
			return err
		}
		pubDate, err := parseTime(row, "pub_date")
		if err != nil {
			return err
		}
		review := models.Review{
			ID:       id,
			TitleID:  titleID,
			AuthorID: authorID,
			Text:     row["text"],
			Score:    int(score),
			PubDate:  pubDate,
		}
		if err := im.db.Omit("Title", "Author").Create(&review).Error; err != nil {
			return fmt.Errorf("review %d: %w", id, err)
		}
	}
	return nil
}

func (im *Importer) loadComments(rows []map[string]string) error {
	for _, row := range rows {
		id, err := parseInt(row, "id")
		if err != nil {
			return err
		}
		reviewID, err := parseInt(row, "review_id")
		if err != nil {
			return err
		}
		authorID, err := im.resolveAuthor(row)
		if err != nil {
			return err
		}
		pubDate, err := parseTime(row, "pub_date")
		if err != nil {
			return err
		}
		comment := models.Comment{
			ID:       id,
			ReviewID: reviewID,
			AuthorID: authorID,
			Text:     row["text"],
			PubDate:  pubDate,
		}
		if err := im.db.Omit("Review", "Author").Create(&comment).Error; err != nil {
			return fmt.Errorf("comment %d: %w", id, err)
		}
	}
	return nil
}
