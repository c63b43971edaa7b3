package notation

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Per-field defaults applied when the document lacks the corresponding structure.
const (
	DefaultTitle         = "Untitled"
	DefaultComposer      = "Unknown"
	DefaultInstrument    = "Piano"
	DefaultClef          = "treble"
	DefaultTimeSignature = "4/4"
)

// Metadata is the semantic attribute record derived from a notation document.
// It is never mutated after extraction.
type Metadata struct {
	Title         string
	Composer      string
	Instrument    string
	Clef          string
	KeySignature  string
	TimeSignature string
	MeasureCount  int
	Tempo         int
	Style         string
}

var instrumentCaser = cases.Title(language.English)

// Default returns the fixed metadata record substituted when extraction
// fails outright. measureCount is the configured fallback count.
func Default(measureCount int) Metadata {
	if measureCount < 1 {
		measureCount = 1
	}
	return Metadata{
		Title:         DefaultTitle,
		Composer:      DefaultComposer,
		Instrument:    DefaultInstrument,
		Clef:          DefaultClef,
		KeySignature:  DefaultKeyName,
		TimeSignature: DefaultTimeSignature,
		MeasureCount:  measureCount,
	}
}

// Extract parses documentBytes and derives the score metadata record.
// A structurally invalid document returns an error tagged
// services.ErrMalformedDocument; the orchestrator substitutes Default and
// continues, so extraction failure never aborts image rendering.
func Extract(documentBytes []byte) (Metadata, error) {
	score, err := Parse(documentBytes)
	if err != nil {
		return Metadata{}, err
	}

	meta := Metadata{
		Title:         DefaultTitle,
		Composer:      DefaultComposer,
		Instrument:    DefaultInstrument,
		Clef:          DefaultClef,
		KeySignature:  DefaultKeyName,
		TimeSignature: DefaultTimeSignature,
	}

	if score.Work != nil {
		if title := strings.TrimSpace(score.Work.Title); title != "" {
			meta.Title = title
		}
	}
	if score.Identification != nil {
		for _, creator := range score.Identification.Creators {
			if !strings.EqualFold(strings.TrimSpace(creator.Type), "composer") {
				continue
			}
			if name := strings.TrimSpace(creator.Name); name != "" {
				meta.Composer = name
			}
			break
		}
	}
	if name := strings.TrimSpace(score.PartList.ScoreParts[0].PartName); name != "" {
		meta.Instrument = instrumentCaser.String(name)
	}

	first := score.Parts[0]
	meta.MeasureCount = len(first.Measures)

	if attrs := firstAttributes(first); attrs != nil {
		if attrs.Clef != nil {
			meta.Clef = clefName(attrs.Clef.Sign, attrs.Clef.Line)
		}
		if attrs.Key != nil && attrs.Key.Fifths != nil {
			meta.KeySignature = KeyName(*attrs.Key.Fifths)
		}
		if attrs.Time != nil {
			beats := strings.TrimSpace(attrs.Time.Beats)
			beatType := strings.TrimSpace(attrs.Time.BeatType)
			if beats != "" && beatType != "" {
				meta.TimeSignature = beats + "/" + beatType
			}
		}
	}

	if tempo, ok := firstTempo(first); ok {
		meta.Tempo = tempo
	}

	return meta, nil
}

// firstAttributes returns the attributes of the first measure that carries any.
func firstAttributes(part Part) *Attributes {
	for _, measure := range part.Measures {
		if measure.Attributes != nil {
			return measure.Attributes
		}
	}
	return nil
}

func firstTempo(part Part) (int, bool) {
	for _, measure := range part.Measures {
		for _, sound := range measure.Sounds {
			value := strings.TrimSpace(sound.Tempo)
			if value == "" {
				continue
			}
			if tempo, err := strconv.ParseFloat(value, 64); err == nil && tempo > 0 {
				return int(tempo), true
			}
		}
	}
	return 0, false
}

// clefName maps a MusicXML clef to its spoken name. G2 is treble, F4 is bass,
// anything else falls back to treble.
func clefName(sign, line string) string {
	sign = strings.ToUpper(strings.TrimSpace(sign))
	line = strings.TrimSpace(line)
	if sign == "F" && line == "4" {
		return "bass"
	}
	return DefaultClef
}
