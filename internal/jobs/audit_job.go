package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/services"
)

// StartAuditScheduler runs the consistency auditor on a cron schedule. The
// auditor only reports; repairs stay manual. Returns the scheduler so the
// entry point can stop it on shutdown.
func StartAuditScheduler(spec string, auditor services.ConsistencyAuditor) (*cron.Cron, error) {
	scheduler := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	_, err := scheduler.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		report, err := auditor.RunOnce(ctx)
		if err != nil {
			log.Printf("[AUDITOR] scheduled run failed: %v", err)
			return
		}
		if !report.Clean() {
			log.Printf("[AUDITOR] findings: orphan_sales=%d orphan_lines=%d activated_unpaid=%d totals_drift=%d",
				len(report.OrphanSales), len(report.OrphanLines),
				len(report.ActivatedUnpaid), len(report.TotalsDrift))
		}
	})
	if err != nil {
		return nil, err
	}

	scheduler.Start()
	log.Printf("consistency audit scheduled (%s)", spec)
	return scheduler, nil
}
