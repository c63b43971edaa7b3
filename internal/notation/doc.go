// Package notation models the MusicXML documents flowing through the
// pipeline: parsing with structural validation, semantic metadata extraction
// (title, composer, instrument, clef, key, time, measure count), and the
// deterministic placeholder document used when the OMR engine degrades.
package notation
