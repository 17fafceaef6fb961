package model

// ConsultationRequest is a pending consultation submitted by a student through
// the central system. Identity is ID: a later arrival with the same ID replaces
// the stored content in place.
//
// The json tags match the wire shape on faculty/<id>/requests.
type ConsultationRequest struct {
	ID            string `json:"id"`
	RequesterID   string `json:"student_id"`
	RequesterName string `json:"student_name"`
	Body          string `json:"request_text"`
	SubmittedAt   string `json:"timestamp"`
	Status        string `json:"status"`
}
