// package formatter maps statistics records to display rows and exports them to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/statify/internal/models"
	"github.com/desertthunder/statify/internal/services"
	"github.com/desertthunder/statify/internal/shared"
	"github.com/desertthunder/statify/internal/tasks"
)

// Image size tiers, indexes into the provider's largest-first image list.
const (
	TierLarge  = 0
	TierMedium = 1
	TierSmall  = 2
)

const (
	// PlaceholderSmall stands in for a missing list thumbnail.
	PlaceholderSmall = "https://placehold.co/64x64/1f1f1f/ffffff?text=?"
	// PlaceholderMedium stands in for a missing card image.
	PlaceholderMedium = "https://placehold.co/300x300/1f1f1f/ffffff?text=?"
)

// Row is one ranked line of a list widget.
type Row struct {
	Rank     int    `json:"rank"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	ImageURL string `json:"image_url"`
	Link     string `json:"link,omitempty"`
}

// Card is one tile of the recommendations grid.
type Card struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	ImageURL string `json:"image_url"`
	Link     string `json:"link"`
}

// ImageAt returns the URL at tier, or placeholder when the list has no such tier.
func ImageAt(images []models.Image, tier int, placeholder string) string {
	if tier >= 0 && tier < len(images) && images[tier].URL != "" {
		return images[tier].URL
	}
	return placeholder
}

// ArtistRows maps top artists to rows with small thumbnails and their genres.
func ArtistRows(artists []models.Artist) []Row {
	rows := make([]Row, 0, len(artists))
	for i, a := range artists {
		rows = append(rows, Row{
			Rank:     i + 1,
			Title:    a.Name,
			Subtitle: strings.Join(a.Genres, ", "),
			ImageURL: ImageAt(a.Images, TierSmall, PlaceholderSmall),
		})
	}
	return rows
}

// TrackRows maps tracks to rows showing the artists and the album's small image.
func TrackRows(tracks []models.Track) []Row {
	rows := make([]Row, 0, len(tracks))
	for i, t := range tracks {
		rows = append(rows, Row{
			Rank:     i + 1,
			Title:    t.Name,
			Subtitle: models.ArtistNames(t.Artists),
			ImageURL: ImageAt(t.Album.Images, TierSmall, PlaceholderSmall),
			Link:     t.ExternalURL,
		})
	}
	return rows
}

// AlbumRows maps derived albums to rows.
func AlbumRows(albums []models.AlbumRank) []Row {
	rows := make([]Row, 0, len(albums))
	for i, a := range albums {
		rows = append(rows, Row{
			Rank:     i + 1,
			Title:    a.Album.Name,
			Subtitle: models.ArtistNames(a.Album.Artists),
			ImageURL: ImageAt(a.Album.Images, TierSmall, PlaceholderSmall),
		})
	}
	return rows
}

// RecommendationCards maps recommended tracks to cards using the medium album image.
func RecommendationCards(tracks []models.Track) []Card {
	cards := make([]Card, 0, len(tracks))
	for _, t := range tracks {
		cards = append(cards, Card{
			Title:    t.Name,
			Subtitle: models.ArtistNames(t.Artists),
			ImageURL: ImageAt(t.Album.Images, TierMedium, PlaceholderMedium),
			Link:     t.ExternalURL,
		})
	}
	return cards
}

// CardRows flattens cards into rows for the list exporters.
func CardRows(cards []Card) []Row {
	rows := make([]Row, 0, len(cards))
	for i, c := range cards {
		rows = append(rows, Row{Rank: i + 1, Title: c.Title, Subtitle: c.Subtitle, ImageURL: c.ImageURL, Link: c.Link})
	}
	return rows
}

// EmptyState explains why a widget has nothing to show.
func EmptyState(err error) string {
	var (
		apiErr   *services.APIError
		emptyErr *tasks.EmptyResultError
	)

	switch {
	case err == nil:
		return "Nothing to show yet. Listen to some music and check back later."
	case errors.Is(err, shared.ErrSessionExpired), errors.Is(err, shared.ErrNotAuthenticated):
		return "Your session has expired. Log in again to continue."
	case errors.As(err, &emptyErr):
		return fmt.Sprintf("Could not find recommendations (%s). Listen to more music and try again.", emptyErr.Message)
	case errors.As(err, &apiErr) && apiErr.Status == 0:
		return fmt.Sprintf("Could not reach Spotify: %s", apiErr.Message)
	case errors.As(err, &apiErr):
		return fmt.Sprintf("Spotify returned an error (%d): %s", apiErr.Status, apiErr.Message)
	default:
		return fmt.Sprintf("Something went wrong: %v", err)
	}
}

// ExportToCSV converts rows to CSV format with columns: Rank, Title, Subtitle, Image, Link
func ExportToCSV(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "Title", "Subtitle", "Image", "Link"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range rows {
		record := []string{strconv.Itoa(r.Rank), r.Title, r.Subtitle, r.ImageURL, r.Link}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts rows to a Markdown list under title with thumbnails
func ExportToMarkdown(title string, rows []Row) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	if len(rows) == 0 {
		fmt.Fprintf(&buf, "_%s_\n", EmptyState(nil))
		return buf.Bytes(), nil
	}

	for _, r := range rows {
		name := r.Title
		if r.Link != "" {
			name = fmt.Sprintf("[%s](%s)", r.Title, r.Link)
		}
		fmt.Fprintf(&buf, "%d. ![](%s) **%s**", r.Rank, r.ImageURL, name)
		if r.Subtitle != "" {
			fmt.Fprintf(&buf, " - %s", r.Subtitle)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts rows to plain text format
func ExportToText(title string, rows []Row) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n\n", title)
	if len(rows) == 0 {
		fmt.Fprintf(&buf, "%s\n", EmptyState(nil))
		return buf.Bytes(), nil
	}

	for _, r := range rows {
		if r.Subtitle != "" {
			fmt.Fprintf(&buf, "%d. %s - %s\n", r.Rank, r.Title, r.Subtitle)
		} else {
			fmt.Fprintf(&buf, "%d. %s\n", r.Rank, r.Title)
		}
	}

	return buf.Bytes(), nil
}

// Export renders rows in format: csv, markdown (md), json, or txt (the default).
func Export(format, title string, rows []Row) ([]byte, error) {
	switch strings.ToLower(format) {
	case "csv":
		return ExportToCSV(rows)
	case "markdown", "md":
		return ExportToMarkdown(title, rows)
	case "json":
		return shared.MarshalJSON(rows, true)
	case "txt", "text", "":
		return ExportToText(title, rows)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// WriteExport renders rows and writes them to path.
func WriteExport(path, format, title string, rows []Row) error {
	if path == "" {
		return fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}

	data, err := Export(format, title, rows)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
