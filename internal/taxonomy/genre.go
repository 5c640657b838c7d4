package taxonomy

// Genre is one label of the fixed genre taxonomy. The zero value is Unknown.
type Genre string

const (
	Unknown           Genre = "Unknown"
	House             Genre = "House"
	DeepHouse         Genre = "Deep House"
	Techno            Genre = "Techno"
	Trance            Genre = "Trance"
	ProgressiveTrance Genre = "Progressive Trance"
	Dubstep           Genre = "Dubstep"
	DrumAndBass       Genre = "Drum & Bass"
	Breakbeat         Genre = "Breakbeat"
	Ambient           Genre = "Ambient"
	Downtempo         Genre = "Downtempo"
	Progressive       Genre = "Progressive"
	FutureBass        Genre = "Future Bass"
	Trap              Genre = "Trap"
	Electronic        Genre = "Electronic"
	Experimental      Genre = "Experimental"
)

// All lists every genre of the taxonomy except Unknown, in display order.
var All = []Genre{
	House, DeepHouse, Techno, Trance, ProgressiveTrance, Dubstep,
	DrumAndBass, Breakbeat, Ambient, Downtempo, Progressive,
	FutureBass, Trap, Electronic, Experimental,
}

func (g Genre) String() string {
	if g == "" {
		return string(Unknown)
	}
	return string(g)
}

// synonyms maps normalized tag strings to taxonomy genres. Keys must be
// fixed points of Normalize.
var synonyms = map[string]Genre{
	"house":              House,
	"deep house":         DeepHouse,
	"tech house":         House,
	"techno":             Techno,
	"minimal techno":     Techno,
	"trance":             Trance,
	"progressive trance": ProgressiveTrance,
	"uplifting trance":   Trance,
	"psytrance":          Trance,
	"dubstep":            Dubstep,
	"brostep":            Dubstep,
	"drum & bass":        DrumAndBass,
	"liquid drum & bass": DrumAndBass,
	"neurofunk":          DrumAndBass,
	"jungle":             DrumAndBass,
	"breakbeat":          Breakbeat,
	"breaks":             Breakbeat,
	"big beat":           Breakbeat,
	"ambient":            Ambient,
	"chillout":           Downtempo,
	"downtempo":          Downtempo,
	"lounge":             Downtempo,
	"progressive":        Progressive,
	"progressive house":  Progressive,
	"future bass":        FutureBass,
	"trap":               Trap,
	"electronic":         Electronic,
	"electronica":        Electronic,
	"edm":                Electronic,
	"dance":              Electronic,
	"idm":                Experimental,
	"experimental":       Experimental,
	"avant-garde":        Experimental,
}

// ParseGenre maps an arbitrary tag string to a taxonomy genre. The second
// return value reports whether the tag resolved to a known genre.
func ParseGenre(tag string) (Genre, bool) {
	normalized := Normalize(tag)
	if g, ok := synonyms[normalized]; ok {
		return g, true
	}
	return Unknown, false
}

// similar maps each genre to its neighbours, nearest first. Used by the
// playlist matcher when no exact playlist exists for a genre.
var similar = map[Genre][]Genre{
	House:             {DeepHouse, Progressive, Techno},
	DeepHouse:         {House, Ambient, Downtempo},
	Techno:            {House, Experimental, Electronic},
	Trance:            {ProgressiveTrance, Progressive, Ambient},
	ProgressiveTrance: {Trance, Progressive, Electronic},
	Dubstep:           {DrumAndBass, Trap, FutureBass},
	DrumAndBass:       {Dubstep, Breakbeat, Techno},
	Breakbeat:         {DrumAndBass, Techno, Experimental},
	Ambient:           {Downtempo, DeepHouse, Experimental},
	Downtempo:         {Ambient, DeepHouse, Electronic},
	Progressive:       {Trance, House, Electronic},
	FutureBass:        {Dubstep, Trap, Electronic},
	Trap:              {Dubstep, FutureBass, Electronic},
	Electronic:        {Techno, Trance, Progressive},
	Experimental:      {Ambient, Techno, Breakbeat},
}

// Similar returns the neighbours of a genre, nearest first. Unknown has none.
func Similar(g Genre) []Genre {
	return similar[g]
}

// families groups genres whose co-membership in playlists is never a
// conflict. Electronic and Experimental are umbrella labels and conflict
// with nothing.
var families = map[Genre]string{
	House:             "house",
	DeepHouse:         "house",
	Progressive:       "house",
	Techno:            "techno",
	Trance:            "trance",
	ProgressiveTrance: "trance",
	Dubstep:           "bass",
	DrumAndBass:       "bass",
	Breakbeat:         "bass",
	FutureBass:        "bass",
	Trap:              "bass",
	Ambient:           "chill",
	Downtempo:         "chill",
}

// SameFamily reports whether two genres belong to the same family. Umbrella
// genres (Electronic, Experimental, Unknown) are compatible with everything.
func SameFamily(a, b Genre) bool {
	fa, oka := families[a]
	fb, okb := families[b]
	if !oka || !okb {
		return true
	}
	return fa == fb
}
