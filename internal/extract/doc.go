// Package extract finds structured personal identifiers in free-form text.
//
// The Extractor runs independent pattern passes over the same text and emits
// one model.Candidate per distinct match. Each identifier type carries a fixed
// confidence:
//
//	email address          email_id        0.90
//	phone number           phone_number    0.85
//	tax ID (AAAAA9999A)    pan_number      0.90
//	12-digit national ID   aadhaar_number  0.90
//	payment handle         upi_id          0.80
//	16-digit card number   card_number     0.75
//	street address         home_address    0.65
//
// Payment handles that overlap an email match are dropped so the same token
// is never counted under two ingredient keys.
//
// Extraction never fails. Oversized text is truncated and a pass that panics
// is logged and skipped, leaving the other passes' results intact.
package extract
