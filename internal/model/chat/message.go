package chat

// Sender tags who authored a message in the visible log.
type Sender string

const (
	SenderUser    Sender = "user"
	SenderPartner Sender = "character"
)

// Annotation marks the structural shape of a message payload.
type Annotation string

const (
	AnnotationNone      Annotation = ""
	AnnotationComposite Annotation = "composite"
	AnnotationImage     Annotation = "image"
)

// Message is one entry of the visible chat log. The ID is client-local,
// strictly increasing within one connection lifetime, and is never
// transmitted; it exists only for stable UI keying.
type Message struct {
	ID         int        `json:"id"`
	Sender     Sender     `json:"sender"`
	Content    string     `json:"content"`
	Annotation Annotation `json:"annotation,omitempty"`
}
