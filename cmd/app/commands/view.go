package commands

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/allisson/phrsdk"
	attachmentDomain "github.com/allisson/phrsdk/internal/attachment/domain"
	recordDomain "github.com/allisson/phrsdk/internal/record/domain"
)

// recordView is how a record is printed in every output format.
type recordView struct {
	ID           string           `json:"id" yaml:"id"`
	Kind         string           `json:"kind" yaml:"kind"`
	ResourceType string           `json:"resource_type,omitempty" yaml:"resource_type,omitempty"`
	Status       string           `json:"status" yaml:"status"`
	Annotations  []string         `json:"annotations" yaml:"annotations"`
	CreatedDate  string           `json:"created_date" yaml:"created_date"`
	UpdatedDate  string           `json:"updated_date,omitempty" yaml:"updated_date,omitempty"`
	Attachments  []attachmentView `json:"attachments,omitempty" yaml:"attachments,omitempty"`
	Resource     map[string]any   `json:"resource,omitempty" yaml:"resource,omitempty"`
	Data         string           `json:"data,omitempty" yaml:"data,omitempty"`
}

type attachmentView struct {
	ID          string `json:"id" yaml:"id"`
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Size        int    `json:"size" yaml:"size"`
	Path        string `json:"path,omitempty" yaml:"path,omitempty"`
}

type failureView struct {
	ID    string `json:"id" yaml:"id"`
	Error string `json:"error" yaml:"error"`
}

// newRecordView flattens record. Attachment payloads are left out of the resource; they
// are reported by size and written to disk by the download commands.
func newRecordView(record *phrsdk.Record) (recordView, error) {
	view := recordView{
		ID:          record.ID,
		Kind:        record.Resource.Kind.String(),
		Status:      string(record.Status),
		Annotations: record.Annotations,
		CreatedDate: recordDomain.FormatDate(record.Meta.CreatedDate),
	}
	if !record.Meta.UpdatedDate.IsZero() {
		view.UpdatedDate = record.Meta.UpdatedDate.Format(recordDomain.UpdatedDateLayout)
	}

	if record.Resource.Kind == phrsdk.KindData {
		view.Data = base64.StdEncoding.EncodeToString(record.Resource.Data)
		return view, nil
	}

	if record.Resource.Fhir == nil {
		return view, nil
	}
	view.ResourceType = record.Resource.Fhir.ResourceType()

	payloads := make(map[*phrsdk.Attachment][]byte)
	for _, att := range record.Resource.Attachments() {
		view.Attachments = append(view.Attachments, newAttachmentView(att))
		payloads[att] = att.Data
		att.Data = nil
	}
	encoded, err := json.Marshal(record.Resource.Fhir)
	for att, data := range payloads {
		att.Data = data
	}
	if err != nil {
		return view, fmt.Errorf("failed to encode resource: %w", err)
	}
	if err := json.Unmarshal(encoded, &view.Resource); err != nil {
		return view, fmt.Errorf("failed to encode resource: %w", err)
	}
	return view, nil
}

func newAttachmentView(att *phrsdk.Attachment) attachmentView {
	size := att.Size
	if len(att.Data) > 0 {
		size = len(att.Data)
	}
	return attachmentView{ID: att.ID, ContentType: att.ContentType, Title: att.Title, Size: size}
}

func newRecordViews(records []*phrsdk.Record) ([]recordView, error) {
	views := make([]recordView, 0, len(records))
	for _, record := range records {
		view, err := newRecordView(record)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func newFailureViews(failures []phrsdk.BatchFailure) []failureView {
	views := make([]failureView, 0, len(failures))
	for _, f := range failures {
		views = append(views, failureView{ID: f.ID, Error: f.Err.Error()})
	}
	return views
}

func writeRecordText(w io.Writer, view recordView) {
	_, _ = fmt.Fprintf(w, "Record %s\n", view.ID)
	if view.ResourceType != "" {
		_, _ = fmt.Fprintf(w, "  Kind:        %s (%s)\n", view.Kind, view.ResourceType)
	} else {
		_, _ = fmt.Fprintf(w, "  Kind:        %s\n", view.Kind)
	}
	_, _ = fmt.Fprintf(w, "  Status:      %s\n", view.Status)
	_, _ = fmt.Fprintf(w, "  Created:     %s\n", view.CreatedDate)
	if view.UpdatedDate != "" {
		_, _ = fmt.Fprintf(w, "  Updated:     %s\n", view.UpdatedDate)
	}
	if len(view.Annotations) > 0 {
		_, _ = fmt.Fprintf(w, "  Annotations: %s\n", strings.Join(view.Annotations, ", "))
	}
	for _, att := range view.Attachments {
		_, _ = fmt.Fprintf(w, "  Attachment:  %s (%s, %d bytes)", att.ID, att.ContentType, att.Size)
		if att.Path != "" {
			_, _ = fmt.Fprintf(w, " -> %s", att.Path)
		}
		_, _ = fmt.Fprintln(w)
	}
}

func writeFailuresText(w io.Writer, failures []failureView) {
	for _, f := range failures {
		_, _ = fmt.Fprintf(w, "Failed %s: %s\n", f.ID, f.Error)
	}
}

var fileExtensions = map[attachmentDomain.FileType]string{
	attachmentDomain.FileTypeJPEG:  ".jpg",
	attachmentDomain.FileTypePNG:   ".png",
	attachmentDomain.FileTypeTIFF:  ".tiff",
	attachmentDomain.FileTypeDICOM: ".dcm",
	attachmentDomain.FileTypePDF:   ".pdf",
}

// saveAttachment writes the payload of att below dir and returns the file path. The
// name is derived from the attachment id, the extension from the payload signature.
func saveAttachment(dir string, att *phrsdk.Attachment) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	ext, ok := fileExtensions[attachmentDomain.DetectFileType(att.Data)]
	if !ok {
		ext = ".bin"
	}
	name := strings.NewReplacer("#", "_", "/", "_", "\\", "_").Replace(att.ID)
	if name == "" {
		name = "attachment"
	}

	path := filepath.Join(dir, name+ext)
	if err := os.WriteFile(path, att.Data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
