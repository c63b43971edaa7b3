package notation

import (
	"encoding/xml"

	"scoreflow/internal/services"
)

// Score is the partwise MusicXML document root.
type Score struct {
	XMLName        xml.Name        `xml:"score-partwise"`
	Work           *Work           `xml:"work"`
	Identification *Identification `xml:"identification"`
	PartList       PartList        `xml:"part-list"`
	Parts          []Part          `xml:"part"`
}

// Work carries the score title.
type Work struct {
	Title string `xml:"work-title"`
}

// Identification lists creators such as the composer.
type Identification struct {
	Creators []Creator `xml:"creator"`
}

// Creator is a typed creator entry ("composer", "lyricist", ...).
type Creator struct {
	Type string `xml:"type,attr"`
	Name string `xml:",chardata"`
}

// PartList declares the score's parts.
type PartList struct {
	ScoreParts []ScorePart `xml:"score-part"`
}

// ScorePart declares one part and its display name.
type ScorePart struct {
	ID       string `xml:"id,attr"`
	PartName string `xml:"part-name"`
}

// Part holds the measures of one declared part.
type Part struct {
	ID       string    `xml:"id,attr"`
	Measures []Measure `xml:"measure"`
}

// Measure is one measure with its optional leading attributes.
type Measure struct {
	Number     string      `xml:"number,attr"`
	Attributes *Attributes `xml:"attributes"`
	Sounds     []Sound     `xml:"direction>sound"`
}

// Attributes carries the musical attributes attached to a measure.
type Attributes struct {
	Divisions int   `xml:"divisions"`
	Key       *Key  `xml:"key"`
	Time      *Time `xml:"time"`
	Clef      *Clef `xml:"clef"`
}

// Key is a key signature expressed as a fifths count.
type Key struct {
	Fifths *int `xml:"fifths"`
}

// Time is a time signature.
type Time struct {
	Beats    string `xml:"beats"`
	BeatType string `xml:"beat-type"`
}

// Clef is a clef sign plus staff line.
type Clef struct {
	Sign string `xml:"sign"`
	Line string `xml:"line"`
}

// Sound carries a direction's tempo marking.
type Sound struct {
	Tempo string `xml:"tempo,attr"`
}

// Parse decodes a MusicXML document and enforces the structural minimum the
// extractor depends on: a score-partwise root, a non-empty part list, and a
// first part carrying at least one measure.
func Parse(data []byte) (*Score, error) {
	var score Score
	if err := xml.Unmarshal(data, &score); err != nil {
		return nil, services.Wrap(services.ErrMalformedDocument, "notation", "parse", "", err)
	}
	if len(score.PartList.ScoreParts) == 0 {
		return nil, services.Wrap(services.ErrMalformedDocument, "notation", "parse", "part list is empty", nil)
	}
	if len(score.Parts) == 0 {
		return nil, services.Wrap(services.ErrMalformedDocument, "notation", "parse", "document has no parts", nil)
	}
	if len(score.Parts[0].Measures) == 0 {
		return nil, services.Wrap(services.ErrMalformedDocument, "notation", "parse", "first part has no measures", nil)
	}
	return &score, nil
}
