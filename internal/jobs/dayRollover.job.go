package jobs

import (
	"context"
	logger "github.com/Bparsons0904/goLogger"
	"linecheck/internal/services"
)

// DayRolloverJob runs the day-boundary check on a schedule so the checklist
// resets shortly after local midnight even when nobody is interacting.
type DayRolloverJob struct {
	reset    *services.ResetController
	log      logger.Logger
	schedule services.Schedule
}

func NewDayRolloverJob(
	reset *services.ResetController,
	schedule services.Schedule,
) *DayRolloverJob {
	log := logger.New("dayRolloverJob")
	log.Info("Creating new day rollover job", "schedule", schedule)

	return &DayRolloverJob{
		reset:    reset,
		log:      log,
		schedule: schedule,
	}
}

func (j *DayRolloverJob) Name() string {
	return "DayRolloverCheck"
}

func (j *DayRolloverJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	rolled, err := j.reset.CheckNow(ctx)
	if err != nil {
		return log.Err("day boundary check failed", err)
	}

	if rolled {
		log.Info("Checklist day rolled over")
	}

	return nil
}

func (j *DayRolloverJob) Schedule() services.Schedule {
	return j.schedule
}
