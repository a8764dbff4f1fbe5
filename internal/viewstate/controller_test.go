package viewstate

import (
	"context"
	"errors"
	"testing"

	"filedeck/internal/repository"
	"filedeck/internal/repository/memory"
	"filedeck/internal/service"
	"filedeck/internal/viewer"
)

func newTestController(t *testing.T, seed ...repository.FileRecord) (*Controller, *service.FileService) {
	t.Helper()
	svc := service.NewFileService(memory.NewFileRepository(), nil)
	if len(seed) > 0 {
		if err := svc.Seed(context.Background(), seed); err != nil {
			t.Fatalf("Seed returned error: %v", err)
		}
	}
	return New(svc, "", nil), svc
}

func defaultSeed() []repository.FileRecord {
	return []repository.FileRecord{
		{ID: 1, Name: "a.mp4", Type: repository.FileTypeVideo, Path: "/file-server/a.mp4"},
		{ID: 2, Name: "b.mp3", Type: repository.FileTypeAudio, Path: "/file-server/b.mp3"},
		{ID: 3, Name: "x.mp3", Type: repository.FileTypeAudio, Path: "/file-server/sub/x.mp3"},
		{ID: 4, Name: "o.mp3", Type: repository.FileTypeAudio, Path: "/elsewhere/o.mp3"},
		{ID: 5, Name: "e.xyz", Type: repository.FileTypeUnknown, Path: "/file-server/e.xyz"},
	}
}

func TestController_SelectToggles(t *testing.T) {
	c, _ := newTestController(t, defaultSeed()...)
	ctx := context.Background()

	rec, err := c.Select(ctx, 1)
	if err != nil || rec == nil || rec.ID != 1 {
		t.Fatalf("expected file 1 selected, got %+v (%v)", rec, err)
	}

	rec, err = c.Select(ctx, 1)
	if err != nil || rec != nil {
		t.Fatalf("second select of the same file must clear selection, got %+v (%v)", rec, err)
	}
	if sel, _ := c.Selected(ctx); sel != nil {
		t.Fatalf("expected no selection, got %+v", sel)
	}

	c.Select(ctx, 1)
	rec, _ = c.Select(ctx, 2)
	if rec == nil || rec.ID != 2 {
		t.Fatalf("selecting another file must replace selection, got %+v", rec)
	}

	if _, err := c.Select(ctx, 99); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if sel, _ := c.Selected(ctx); sel == nil || sel.ID != 2 {
		t.Fatalf("failed select must keep previous selection, got %+v", sel)
	}

	c.ClearSelection()
	if sel, _ := c.Selected(ctx); sel != nil {
		t.Fatalf("expected cleared selection, got %+v", sel)
	}
}

func TestController_DeleteSelectedClearsSelection(t *testing.T) {
	c, svc := newTestController(t, defaultSeed()...)
	ctx := context.Background()

	if err := c.DeleteSelected(ctx); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}

	c.Select(ctx, 2)
	if err := c.DeleteSelected(ctx); err != nil {
		t.Fatalf("DeleteSelected returned error: %v", err)
	}
	if sel, _ := c.Selected(ctx); sel != nil {
		t.Fatalf("deleting the selected file must clear selection, got %+v", sel)
	}
	if _, err := svc.Get(ctx, 2); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("file 2 should be gone, got %v", err)
	}

	c.Select(ctx, 1)
	if err := c.Delete(ctx, 3); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if sel, _ := c.Selected(ctx); sel == nil || sel.ID != 1 {
		t.Fatalf("deleting another file must keep selection, got %+v", sel)
	}
	if err := c.Delete(ctx, 3); err != nil {
		t.Fatalf("deleting a missing file must be a no-op, got %v", err)
	}
}

func TestController_RenameSelectedClearsSelection(t *testing.T) {
	c, _ := newTestController(t, defaultSeed()...)
	ctx := context.Background()

	if _, err := c.RenameSelected(ctx, "new"); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}

	c.Select(ctx, 1)
	if _, err := c.RenameSelected(ctx, "b.mp3"); !service.IsDuplicateName(err) {
		t.Fatalf("expected DuplicateNameError, got %v", err)
	}
	if sel, _ := c.Selected(ctx); sel == nil {
		t.Fatal("failed rename must keep selection")
	}

	rec, err := c.RenameSelected(ctx, "renamed.mp4")
	if err != nil {
		t.Fatalf("RenameSelected returned error: %v", err)
	}
	if rec.Name != "renamed.mp4" || rec.ID != 1 {
		t.Fatalf("unexpected renamed record %+v", rec)
	}
	if sel, _ := c.Selected(ctx); sel != nil {
		t.Fatalf("successful rename must clear selection, got %+v", sel)
	}

	c.Select(ctx, 2)
	if _, err := c.Rename(ctx, 1, "again.mp4"); err != nil {
		t.Fatalf("Rename returned error: %v", err)
	}
	if sel, _ := c.Selected(ctx); sel == nil || sel.ID != 2 {
		t.Fatalf("renaming another file must keep selection, got %+v", sel)
	}
}

func TestController_VisibleFilesAppliesTypeThenPrefix(t *testing.T) {
	c, _ := newTestController(t, defaultSeed()...)
	ctx := context.Background()

	files, _ := c.VisibleFiles(ctx)
	if len(files) != 4 {
		t.Fatalf("expected 4 files under /file-server/, got %+v", files)
	}

	if _, err := c.SetTypeFilter("audio"); err != nil {
		t.Fatalf("SetTypeFilter returned error: %v", err)
	}
	files, _ = c.VisibleFiles(ctx)
	if len(files) != 2 || files[0].ID != 2 || files[1].ID != 3 {
		t.Fatalf("expected audio files 2 and 3 (nested path included), got %+v", files)
	}

	if err := c.SetDirectory("/file-server/sub/"); err != nil {
		t.Fatalf("SetDirectory returned error: %v", err)
	}
	files, _ = c.VisibleFiles(ctx)
	if len(files) != 1 || files[0].ID != 3 {
		t.Fatalf("expected only file 3, got %+v", files)
	}

	if _, err := c.SetTypeFilter("unknown"); !service.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := c.SetDirectory(""); !service.IsValidation(err) {
		t.Fatalf("expected ValidationError for empty directory, got %v", err)
	}
	files, _ = c.VisibleFiles(ctx)
	if len(files) != 1 {
		t.Fatalf("rejected filter must leave state unchanged, got %+v", files)
	}
}

func TestController_UploadUsesActiveDirectory(t *testing.T) {
	c, _ := newTestController(t, defaultSeed()...)
	ctx := context.Background()

	c.SetDirectory("/file-server/sub/")
	res, err := c.ProposeUpload(ctx, service.RawFile{Name: "clip.MKV"}, "clip")
	if err != nil {
		t.Fatalf("ProposeUpload returned error: %v", err)
	}
	if res.Record == nil || res.Record.Path != "/file-server/sub/clip.MKV" || res.Record.ID != 6 {
		t.Fatalf("unexpected upload result %+v", res)
	}

	res, err = c.ProposeUpload(ctx, service.RawFile{Name: "pic.png"}, "clip")
	if err != nil || !res.NeedsConfirmation {
		t.Fatalf("expected confirmation request, got %+v (%v)", res, err)
	}
	rec, err := c.ConfirmUpload(ctx, res.Token)
	if err != nil {
		t.Fatalf("ConfirmUpload returned error: %v", err)
	}
	if rec.ID != 6 || rec.Type != repository.FileTypeImage {
		t.Fatalf("unexpected replaced record %+v", rec)
	}

	res, _ = c.ProposeUpload(ctx, service.RawFile{Name: "pic.png"}, "clip")
	c.CancelUpload(res.Token)
	if _, err := c.ConfirmUpload(ctx, res.Token); !errors.Is(err, service.ErrProposalNotFound) {
		t.Fatalf("expected ErrProposalNotFound, got %v", err)
	}
}

func TestController_ChartIsIndependentOfSelection(t *testing.T) {
	c, _ := newTestController(t, defaultSeed()...)
	ctx := context.Background()

	c.Select(ctx, 1)
	c.SetTypeFilter("video")
	c.OpenChart()

	view, err := c.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if !view.ChartOpen || view.Chart == nil {
		t.Fatalf("expected open chart, got %+v", view)
	}
	want := service.Breakdown{Video: 1, Audio: 3, Unknown: 1, Total: 5}
	if view.Chart.Breakdown != want {
		t.Fatalf("expected %+v, got %+v", want, view.Chart.Breakdown)
	}

	c.CloseChart()
	view, _ = c.Snapshot(ctx)
	if view.ChartOpen || view.Chart != nil {
		t.Fatalf("expected closed chart, got %+v", view)
	}
	if view.Selected == nil || view.Selected.ID != 1 || view.Filter != "video" {
		t.Fatalf("closing the chart must keep selection and filter, got %+v", view)
	}
}

func TestController_SnapshotHeaderAndPreview(t *testing.T) {
	c, _ := newTestController(t, defaultSeed()...)
	ctx := context.Background()

	view, _ := c.Snapshot(ctx)
	if view.HeaderPath != DefaultDirectory || view.Preview != nil {
		t.Fatalf("unexpected initial view %+v", view)
	}

	c.Select(ctx, 5)
	view, _ = c.Snapshot(ctx)
	if view.HeaderPath != "/file-server/e.xyz" {
		t.Fatalf("header must show the selected path, got %s", view.HeaderPath)
	}
	if view.Preview == nil || view.Preview.Kind != viewer.KindNone {
		t.Fatalf("unknown file must have no viewer, got %+v", view.Preview)
	}

	target, err := c.DownloadTarget(ctx)
	if err != nil || target.ID != 5 {
		t.Fatalf("expected download target 5, got %+v (%v)", target, err)
	}
}

func TestController_SelectionDroppedWhenFileRemovedElsewhere(t *testing.T) {
	c, svc := newTestController(t, defaultSeed()...)
	ctx := context.Background()

	c.Select(ctx, 1)
	if err := svc.Remove(ctx, 1); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}

	if _, err := c.DownloadTarget(ctx); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
}
