package models

import (
	"time"

	"github.com/bytedance/sonic"
)

// Display formats shared with the legacy front end.
const (
	DisplayDateLayout     = "02/01/2006"
	DisplayDateTimeLayout = "02/01/2006 15:04:05"
	FileDateLayout        = "02-01-2006"
)

// Kind classifies a catalogue entry.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindZIP   Kind = "zip"
	KindVideo Kind = "video"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPDF, KindZIP, KindVideo:
		return true
	}
	return false
}

// HasArtifact reports whether entries of this kind own a file on disk.
func (k Kind) HasArtifact() bool {
	return k == KindPDF || k == KindZIP
}

// VoteChoice is the stored direction of a single voter.
type VoteChoice string

const (
	VoteUp   VoteChoice = "up"
	VoteDown VoteChoice = "down"
)

// Record is one shared summary, archive or video link.
type Record struct {
	ID              int64
	Kind            Kind
	CourseName      string
	Title           string
	AuthorHandle    string
	Description     string
	StorageLocator  string
	FileName        string
	SizeBytes       int64
	SchoolYearLabel string
	YearFilter      *int
	AddedAt         string
	Likes           int
	Dislikes        int
	VoterChoices    map[string]VoteChoice
}

// recordDocument is the on-disk and wire shape of a Record.
type recordDocument struct {
	ID              flexInt64             `json:"id"`
	YearFilter      *flexInt              `json:"annee"`
	Kind            Kind                  `json:"type"`
	Path            string                `json:"path,omitempty"`
	URL             string                `json:"url,omitempty"`
	FileName        string                `json:"nomFichier"`
	CourseName      string                `json:"cours"`
	Title           string                `json:"titre"`
	AuthorHandle    string                `json:"nomDiscord"`
	Description     string                `json:"description"`
	SizeBytes       flexInt64             `json:"poidsFichier"`
	SchoolYearLabel string                `json:"anneeScolaire,omitempty"`
	AddedAt         string                `json:"dateAjout"`
	Likes           flexInt               `json:"likes"`
	Dislikes        flexInt               `json:"dislikes"`
	VoterChoices    map[string]VoteChoice `json:"voters,omitempty"`
}

// MarshalJSON writes the locator under "url" for videos and "path" otherwise.
func (r Record) MarshalJSON() ([]byte, error) {
	doc := recordDocument{
		ID:              flexInt64(r.ID),
		Kind:            r.Kind,
		FileName:        r.FileName,
		CourseName:      r.CourseName,
		Title:           r.Title,
		AuthorHandle:    r.AuthorHandle,
		Description:     r.Description,
		SizeBytes:       flexInt64(r.SizeBytes),
		SchoolYearLabel: r.SchoolYearLabel,
		AddedAt:         r.AddedAt,
		Likes:           flexInt(r.Likes),
		Dislikes:        flexInt(r.Dislikes),
		VoterChoices:    r.VoterChoices,
	}
	if r.YearFilter != nil {
		y := flexInt(*r.YearFilter)
		doc.YearFilter = &y
	}
	if r.Kind == KindVideo {
		doc.URL = r.StorageLocator
	} else {
		doc.Path = r.StorageLocator
	}
	return sonic.ConfigStd.Marshal(doc)
}

// UnmarshalJSON accepts legacy documents: string ids, string years and
// locators under either key.
func (r *Record) UnmarshalJSON(data []byte) error {
	var doc recordDocument
	if err := sonic.ConfigStd.Unmarshal(data, &doc); err != nil {
		return err
	}
	*r = Record{
		ID:              int64(doc.ID),
		Kind:            doc.Kind,
		CourseName:      doc.CourseName,
		Title:           doc.Title,
		AuthorHandle:    doc.AuthorHandle,
		Description:     doc.Description,
		FileName:        doc.FileName,
		SizeBytes:       int64(doc.SizeBytes),
		SchoolYearLabel: doc.SchoolYearLabel,
		AddedAt:         doc.AddedAt,
		Likes:           int(doc.Likes),
		Dislikes:        int(doc.Dislikes),
		VoterChoices:    doc.VoterChoices,
	}
	if doc.YearFilter != nil && *doc.YearFilter != 0 {
		y := int(*doc.YearFilter)
		r.YearFilter = &y
	}
	switch {
	case doc.Kind == KindVideo && doc.URL != "":
		r.StorageLocator = doc.URL
	case doc.Path != "":
		r.StorageLocator = doc.Path
	default:
		r.StorageLocator = doc.URL
	}
	if r.SizeBytes < 0 {
		r.SizeBytes = 0
	}
	if r.Likes < 0 {
		r.Likes = 0
	}
	if r.Dislikes < 0 {
		r.Dislikes = 0
	}
	return nil
}

// Clone returns a deep copy safe to mutate.
func (r Record) Clone() Record {
	out := r
	if r.YearFilter != nil {
		y := *r.YearFilter
		out.YearFilter = &y
	}
	if r.VoterChoices != nil {
		out.VoterChoices = make(map[string]VoteChoice, len(r.VoterChoices))
		for k, v := range r.VoterChoices {
			out.VoterChoices[k] = v
		}
	}
	return out
}

// Summary renders the bracketed description used in the audit journal.
func (r Record) Summary() string {
	year := "null"
	if r.YearFilter != nil {
		year = itoa(*r.YearFilter)
	}
	return "[" + itoa64(r.ID) + "] [" + year + " - " + string(r.Kind) + " - " + r.Title + " - " + r.CourseName + " - " + r.AuthorHandle + "]"
}

// VoteTally is the public counter pair of a record.
type VoteTally struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// DisplayDate formats t the way records show their creation day.
func DisplayDate(t time.Time) string {
	return t.Format(DisplayDateLayout)
}

// DisplayDateTime formats t the way journal entries are stamped.
func DisplayDateTime(t time.Time) string {
	return t.Format(DisplayDateTimeLayout)
}
