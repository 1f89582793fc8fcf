package tasks

import "github.com/desertthunder/statify/internal/models"

// DeriveTopAlbums groups tracks by album and returns up to limit albums.
//
// Albums keep the position of their first track; occurrence counts are informational and never reorder.
// A non-positive limit returns every album.
func DeriveTopAlbums(tracks []models.Track, limit int) []models.AlbumRank {
	index := make(map[string]int)
	ranks := make([]models.AlbumRank, 0)

	for _, t := range tracks {
		key := t.Album.Key()
		if key == "local:|" {
			continue
		}
		if i, ok := index[key]; ok {
			ranks[i].Occurrences++
			continue
		}
		index[key] = len(ranks)
		ranks = append(ranks, models.AlbumRank{Album: t.Album, Occurrences: 1})
	}

	if limit > 0 && len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks
}
