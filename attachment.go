package ews

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/rbaliyan/ews/store"
)

// ArchiveAttachment stores the content of att in the attachment store.
// The attachment id, when known, is added to labels as "attachment_id".
// The content must have been loaded; size and MIME limits are checked
// first.
func (s *service) ArchiveAttachment(ctx context.Context, att *FileAttachment, labels map[string]string) (string, error) {
	if s.opts.blobs == nil {
		return "", ErrAttachmentStoreNotConfigured
	}
	if att == nil || len(att.Content()) == 0 {
		return "", fmt.Errorf("%w: no content to archive", ErrInvalidAttachment)
	}
	limits := s.opts.getLimits()
	limits.MaxAttachmentCount = 1
	if err := ValidateAttachmentsWithMIME([]*FileAttachment{att}, limits, nil, DefaultBlockedMIMETypes()); err != nil {
		return "", err
	}

	info := store.BlobInfo{
		Name:        att.Name(),
		ContentType: att.ContentType(),
		Labels:      make(map[string]string, len(labels)+1),
	}
	for k, v := range labels {
		info.Labels[k] = v
	}
	if att.ID() != "" {
		info.Labels["attachment_id"] = att.ID()
	}

	uri, err := s.opts.blobs.Put(ctx, info, bytes.NewReader(att.Content()))
	if err != nil {
		return "", fmt.Errorf("archive attachment: %w", err)
	}
	s.logger.Debug("attachment archived", "name", att.Name(), "size", len(att.Content()), "uri", uri)
	return uri, nil
}

// OpenArchivedAttachment opens content stored by ArchiveAttachment.
func (s *service) OpenArchivedAttachment(ctx context.Context, uri string) (io.ReadCloser, error) {
	if s.opts.blobs == nil {
		return nil, ErrAttachmentStoreNotConfigured
	}
	if uri == "" {
		return nil, ErrInvalidID
	}
	return s.opts.blobs.Open(ctx, uri)
}
