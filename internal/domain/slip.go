package domain

// Slip is one generated payment slip.
type Slip struct {
	ContactID   int64
	ContactName string

	Reference   string
	Description string
	Payload     string

	PNG []byte

	// Err is set when the slip could not be built; the other fields except
	// ContactID and ContactName are then empty.
	Err error
}
