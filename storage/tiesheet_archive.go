package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// TieSheetArchive keeps the latest JSON snapshot of each drawn round.
type TieSheetArchive struct {
	uploader FileUploader
}

func NewTieSheetArchive(uploader FileUploader) *TieSheetArchive {
	return &TieSheetArchive{uploader: uploader}
}

// TieSheetKey - ключ снимка раунда; повторная жеребьёвка перезаписывает его.
func TieSheetKey(sportID, roundNo int) string {
	return fmt.Sprintf("tie-sheets/sport-%d/round-%d.json", sportID, roundNo)
}

// Save uploads snapshot and returns its public URL.
func (a *TieSheetArchive) Save(ctx context.Context, sportID, roundNo int, snapshot interface{}) (string, error) {
	if a == nil || a.uploader == nil {
		return "", nil
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tie sheet: %w", err)
	}
	result, err := a.uploader.Upload(ctx, TieSheetKey(sportID, roundNo), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return result.Location, nil
}

// Remove deletes the round's snapshot once none of its matches remain.
func (a *TieSheetArchive) Remove(ctx context.Context, sportID, roundNo int) error {
	if a == nil || a.uploader == nil {
		return nil
	}
	return a.uploader.Delete(ctx, TieSheetKey(sportID, roundNo))
}
