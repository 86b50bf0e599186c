package syncqueue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/munidigital/transporte/internal/checklist"
	"github.com/munidigital/transporte/internal/imaging"
	"github.com/munidigital/transporte/internal/model"
	"github.com/munidigital/transporte/internal/store"
)

// Payload is the wire form of a finalized inspection. Images travel as
// data URLs so the whole submission is a single JSON document.
type Payload struct {
	Inspection model.Inspection   `json:"inspection"`
	Items      []PayloadItem      `json:"items"`
	Photos     []PayloadPhoto     `json:"photos,omitempty"`
	Signatures PayloadSignatures  `json:"signatures"`
	Progress   checklist.Progress `json:"progress"`
}

// PayloadItem is one rated checklist item with its optional evidence photo.
type PayloadItem struct {
	ItemID   string `json:"item_id"`
	Label    string `json:"label"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Note     string `json:"note,omitempty"`
	Photo    string `json:"photo,omitempty"`
}

// PayloadPhoto is one named vehicle photo slot.
type PayloadPhoto struct {
	Slot  string `json:"slot"`
	Image string `json:"image"`
}

// PayloadSignatures carries the captured signatures.
type PayloadSignatures struct {
	Inspector string `json:"inspector"`
	Subject   string `json:"subject,omitempty"`
}

// BuildPayload assembles the submission document for a finalized
// inspection: record, item states with evidence, vehicle photos and
// signatures. The inspection must already be submitted.
func BuildPayload(ctx context.Context, db *sql.DB, inspectionID int64) ([]byte, error) {
	insp, err := store.GetInspection(ctx, db, inspectionID)
	if err != nil {
		return nil, err
	}
	if insp == nil {
		return nil, fmt.Errorf("building payload: inspection %d not found", inspectionID)
	}
	if insp.Status != model.InspectionStatusSubmitted {
		return nil, fmt.Errorf("building payload: inspection %d not submitted", inspectionID)
	}

	items, err := store.GetInspectionItems(ctx, db, inspectionID)
	if err != nil {
		return nil, err
	}

	payload := Payload{
		Inspection: *insp,
		Progress:   checklist.ComputeProgress(items),
	}

	for _, item := range items {
		pi := PayloadItem{
			ItemID:   item.ItemID,
			Label:    item.Label,
			Category: item.Category,
			Status:   item.Status,
			Note:     item.Note,
		}
		if item.PhotoMime != "" {
			photo, mime, err := store.GetItemPhoto(ctx, db, inspectionID, item.ItemID)
			if err != nil {
				return nil, err
			}
			pi.Photo = imaging.DataURL(photo, mime)
		}
		payload.Items = append(payload.Items, pi)
	}

	slots, err := store.ListInspectionPhotos(ctx, db, inspectionID)
	if err != nil {
		return nil, err
	}
	for _, slot := range slots {
		photo, mime, err := store.GetInspectionPhoto(ctx, db, inspectionID, slot.Slot)
		if err != nil {
			return nil, err
		}
		payload.Photos = append(payload.Photos, PayloadPhoto{
			Slot:  slot.Slot,
			Image: imaging.DataURL(photo, mime),
		})
	}

	for _, kind := range []string{model.SignatureInspector, model.SignatureSubject} {
		data, mime, err := store.GetSignature(ctx, db, inspectionID, kind)
		if err != nil {
			return nil, err
		}
		if kind == model.SignatureInspector {
			payload.Signatures.Inspector = imaging.DataURL(data, mime)
		} else {
			payload.Signatures.Subject = imaging.DataURL(data, mime)
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return data, nil
}
