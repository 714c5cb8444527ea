package entity

import (
	"fmt"
	"time"
)

// ContentKind selects which flavor of generated content a request is for.
type ContentKind string

const (
	KindDescription    ContentKind = "description"
	KindArtistBio      ContentKind = "artist_bio"
	KindChatPrimer     ContentKind = "chat_primer"
	KindRelatedContext ContentKind = "related_context"
)

// ContentKinds lists every supported kind, in a fixed order used for
// per-kind cache sharding.
var ContentKinds = []ContentKind{KindDescription, KindArtistBio, KindChatPrimer, KindRelatedContext}

func (k ContentKind) Valid() bool {
	for _, known := range ContentKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Artwork is the identity a recognition resolves to. Cross-references from
// other stores use the ID only, never a live pointer.
type Artwork struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Year        string `json:"year"` // may be a range, e.g. "1908-1912"
	Movement    string `json:"movement"`
	Museum      string `json:"museum"`
	Description string `json:"description"`
}

// RecognitionEntry records one successful vision recognition, keyed by the
// image fingerprint. Immutable after creation.
type RecognitionEntry struct {
	Fingerprint  Fingerprint       `json:"fingerprint"`
	Artwork      Artwork           `json:"artwork"`
	Confidence   float64           `json:"confidence"` // 0.0 - 1.0
	RecognizedAt time.Time         `json:"recognized_at"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// RecognitionResult is what the vision collaborator reports before the
// orchestrator mints an artwork ID and stores the entry.
type RecognitionResult struct {
	Artwork    Artwork
	Confidence float64
	Metadata   map[string]string
}

// ContentSignature keys the response cache: artwork + kind, with an optional
// user scope for kinds whose content is personalized.
type ContentSignature struct {
	ArtworkID string
	Kind      ContentKind
	UserID    string
}

func (s ContentSignature) Key() string {
	return fmt.Sprintf("content:%s:%s:%s", s.ArtworkID, s.Kind, s.UserID)
}

// GeneratedContent is a cached payload from the text collaborator.
type GeneratedContent struct {
	Kind        ContentKind `json:"kind"`
	Text        string      `json:"text"`
	Cached      bool        `json:"cached"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// Question is a single multiple-choice quiz question. The set stored for a
// (user, artwork) pair is write-once: retakes always see the same questions.
type Question struct {
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// QuizAttempt is one graded retake.
type QuizAttempt struct {
	Score       int       `json:"score"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// QuizRecord holds the fixed question set plus attempt history for one
// (user, artwork) pair.
type QuizRecord struct {
	UserID    string        `json:"user_id"`
	ArtworkID string        `json:"artwork_id"`
	Questions []Question    `json:"questions"`
	Attempts  []QuizAttempt `json:"attempts"`
	BestScore int           `json:"best_score"`
}

// AttemptResult reports how a new attempt compared to the history. The very
// first attempt sets the best score but is not flagged as an improvement.
type AttemptResult struct {
	Score        int  `json:"score"`
	BestScore    int  `json:"best_score"`
	PreviousBest int  `json:"previous_best"`
	IsNewBest    bool `json:"is_new_best"`
}

// QuizSubmission is the graded outcome of a submitted answer sheet.
type QuizSubmission struct {
	Score        int  `json:"score"`
	Correct      int  `json:"correct"`
	Total        int  `json:"total"`
	BestScore    int  `json:"best_score"`
	PreviousBest int  `json:"previous_best"`
	IsNewBest    bool `json:"is_new_best"`
}

// GradeQuiz scores an answer sheet against the stored question set. Missing
// answers count as wrong; extra answers are ignored.
func GradeQuiz(questions []Question, answers []int) (score, correct int) {
	if len(questions) == 0 {
		return 0, 0
	}
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	return correct * 100 / len(questions), correct
}
