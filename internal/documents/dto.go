package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID    string    `json:"documentId"`
	FileName      string    `json:"fileName"`
	ContentType   string    `json:"contentType"`
	SizeBytes     int64     `json:"sizeBytes"`
	UploadedAt    time.Time `json:"uploadedAt"`
	ExtractedText *string   `json:"extractedText,omitempty"`
}

// ToResponse converts a document; withText controls whether the extracted
// text is included.
func ToResponse(doc Document, withText bool) DocumentResponse {
	resp := DocumentResponse{
		DocumentID:  doc.ID,
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		SizeBytes:   doc.SizeBytes,
		UploadedAt:  doc.UploadedAt,
	}
	if withText {
		text := doc.ExtractedText
		resp.ExtractedText = &text
	}
	return resp
}
