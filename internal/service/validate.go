package service

import (
	"context"
	"errors"

	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/noteful/internal/apperror"
	"github.com/sakif/noteful/internal/repository"
)

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}

// isWellFormedID reports whether s parses as an xid — the gate every
// client-supplied identifier passes before it is allowed anywhere near a
// query.
func isWellFormedID(s string) bool {
	_, err := xid.FromString(s)
	return err == nil
}

// referenceValidator confirms that the folder id and tag ids attached to an
// incoming note write all refer to entities owned by the caller. Both checks
// must pass before any write happens; if either fails, nothing is written.
type referenceValidator struct {
	folders repository.FolderRepository
	tags    repository.TagRepository
}

// validate runs the folder check and the tag check concurrently and joins on
// both. The first failure cancels the group and becomes the operation's
// error; a success on the other branch is discarded. This is a join, not a
// race — both branches must succeed for validate to succeed.
func (v *referenceValidator) validate(ctx context.Context, folderID string, tags []string, userID string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return v.validateFolderID(gctx, folderID, userID)
	})
	g.Go(func() error {
		return v.validateTags(gctx, tags, userID)
	})
	return g.Wait()
}

// validateFolderID checks a candidate folder reference.
//
// An empty id is trivially valid: the note is (or becomes) unfiled. A
// malformed id fails immediately. A well-formed id must match a folder with
// BOTH that id and the caller as owner — one condition, so a folder
// belonging to another user is indistinguishable from a folder that doesn't
// exist. The error never reveals which.
func (v *referenceValidator) validateFolderID(ctx context.Context, folderID, userID string) error {
	if folderID == "" {
		return nil
	}

	if !isWellFormedID(folderID) {
		return apperror.InvalidReference("folderId", "The `folderId` is not valid")
	}

	count, err := v.folders.CountFolder(ctx, folderID, userID)
	if err != nil {
		return err
	}
	if count == 0 {
		return apperror.InvalidReference("folderId", "The `folderId` is not valid")
	}

	return nil
}

// validateTags checks a candidate tag id set.
//
// A nil slice is trivially valid. Every element must be well-formed, and the
// count of the caller's tags matching the set must cover the whole input.
// The count is an existence proxy: one query instead of one lookup per id.
// Known limitation carried over deliberately: duplicate ids in the input
// inflate len(tags) past what the count can reach, so duplicates are
// rejected rather than deduplicated — the check never silently "fixes" the
// request.
func (v *referenceValidator) validateTags(ctx context.Context, tags []string, userID string) error {
	if tags == nil {
		return nil
	}

	for _, tagID := range tags {
		if !isWellFormedID(tagID) {
			return apperror.InvalidReference("tags", "The `tags` array contains an invalid `id`")
		}
	}

	if len(tags) == 0 {
		return nil
	}

	count, err := v.tags.CountTagsByIDs(ctx, tags, userID)
	if err != nil {
		return err
	}
	if len(tags) > count {
		return apperror.InvalidReference("tags", "The `tags` array contains an invalid `id`")
	}

	return nil
}
