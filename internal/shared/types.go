package shared

// Track is a read-only snapshot of a library track. The library owns the
// record; the pipeline only proposes a genre mutation through the library API.
type Track struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Artist       string   `json:"artist"`
	Album        string   `json:"album,omitempty"`
	CurrentGenre string   `json:"genre,omitempty"`
	Confidence   float64  `json:"confidenceScore,omitempty"` // stored score from a previous run
	FilePath     string   `json:"filePath,omitempty"`
	Duration     int      `json:"duration,omitempty"`
	BPM          float64  `json:"bpm,omitempty"`
	Key          string   `json:"key,omitempty"`
	Year         int      `json:"year,omitempty"`
	Playlists    []string `json:"playlists,omitempty"` // playlist IDs the track already belongs to
}

// Playlist is one entry of the library's playlist taxonomy.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Genre       string `json:"genre"`
	TrackCount  int    `json:"trackCount"`
	Description string `json:"description,omitempty"`
}
