package transducer

// Recorder receives per-stage result sizes. *metrics.Pipeline implements it.
type Recorder interface {
	ObserveResolution(strategy string, ham, spam int)
	ObserveRating(strategy string, subjects int)
}

// Stage names reported to observers.
const (
	NameDisambiguation = "disambiguation"
	NameRating         = "rating"
	NameSubjectIndex   = "subject_index"
)
