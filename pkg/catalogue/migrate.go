package catalogue

import (
	"context"
	"log"
	"strconv"

	"github.com/matst80/plat-finder/pkg/types"
)

type MigrationOutcome string

const (
	MigrationUploaded MigrationOutcome = "uploaded"
	MigrationSkipped  MigrationOutcome = "skipped"
	MigrationFailed   MigrationOutcome = "failed"
)

type MigrationResult struct {
	Id      types.EntryId    `json:"id"`
	Outcome MigrationOutcome `json:"outcome"`
	Url     string           `json:"url,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type MigrationReport struct {
	Catalogue string            `json:"catalogue"`
	Uploaded  int               `json:"uploaded"`
	Skipped   int               `json:"skipped"`
	Failed    int               `json:"failed"`
	Results   []MigrationResult `json:"results"`
}

func (r *MigrationReport) add(res MigrationResult) {
	switch res.Outcome {
	case MigrationUploaded:
		r.Uploaded++
	case MigrationSkipped:
		r.Skipped++
	case MigrationFailed:
		r.Failed++
	}
	r.Results = append(r.Results, res)
}

// MigrateAll uploads every bundled asset that has no override yet, one entry
// at a time. Each success is applied immediately, failures do not stop the
// run. If the catalogue is closed midway the partial report is returned with
// ErrUnmounted.
func (c *Catalogue) MigrateAll(ctx context.Context) (*MigrationReport, error) {
	report := &MigrationReport{Catalogue: c.name, Results: make([]MigrationResult, 0, len(c.bundled))}
	if !c.mounted.Load() {
		return report, ErrUnmounted
	}
	if c.opts.Uploader == nil {
		return report, ErrNoUploader
	}
	c.work.Lock()
	defer c.work.Unlock()

	migrateCtx, done := c.bind(ctx)
	defer done()

	c.track("migrate_images_tap", nil)
	for i := range c.bundled {
		if !c.mounted.Load() {
			return report, ErrUnmounted
		}
		if err := migrateCtx.Err(); err != nil {
			return report, err
		}
		report.add(c.migrateOne(migrateCtx, &c.bundled[i]))
	}
	c.track("migrate_images_done", map[string]string{"uploaded": strconv.Itoa(report.Uploaded)})
	log.Printf("[%s] Migration complete, uploaded %d image(s), %d failed", c.name, report.Uploaded, report.Failed)
	return report, nil
}

func (c *Catalogue) migrateOne(ctx context.Context, e *types.Entry) MigrationResult {
	res := MigrationResult{Id: e.Id, Outcome: MigrationSkipped}
	if _, ok := c.Override(e.Id); ok {
		return res
	}
	if e.Image.Kind != types.AssetBundled {
		return res
	}
	// the remote row already points at an uploaded image
	if current, ok := c.Get(e.Id); ok && current.ImageUrl != "" {
		return res
	}
	if c.opts.Assets == nil {
		res.Outcome = MigrationFailed
		res.Error = ErrNoAsset.Error()
		return res
	}
	file, err := c.opts.Assets.Locate(e.Image.Handle)
	if err != nil {
		log.Printf("[%s] Could not locate asset %s for %d: %v", c.name, e.Image.Handle, e.Id, err)
		res.Outcome = MigrationFailed
		res.Error = err.Error()
		return res
	}
	url, err := c.upload(ctx, e.Id, file)
	if err != nil {
		log.Printf("[%s] Migration failed for %d: %v", c.name, e.Id, err)
		res.Outcome = MigrationFailed
		res.Error = err.Error()
		return res
	}
	if !c.mounted.Load() {
		res.Outcome = MigrationFailed
		res.Error = ErrUnmounted.Error()
		return res
	}
	c.applyOverride(ctx, e.Id, url)
	res.Outcome = MigrationUploaded
	res.Url = url
	return res
}

func (c *Catalogue) track(name string, params map[string]string) {
	if c.opts.Tracking == nil {
		return
	}
	c.opts.Tracking.TrackEvent(0, types.TrackingEvent{Name: name, Params: params})
}
