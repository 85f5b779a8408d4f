// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"fmt"

	xglog "github.com/ManuGH/sd2xmltv/internal/log"
	"github.com/ManuGH/sd2xmltv/internal/metrics"
	sd "github.com/ManuGH/sd2xmltv/internal/schedulesdirect"
)

const (
	chunkSchedules = "schedules"
	chunkPrograms  = "programs"
)

// fetchSchedules requests airings chunk by chunk. A failed chunk is logged,
// counted and skipped; only cancellation of ctx aborts the phase.
func fetchSchedules(ctx context.Context, client Client, stationIDs, dates []string, size int) (blocks []sd.StationSchedule, failed int, err error) {
	logger := xglog.WithComponentFromContext(ctx, "jobs")
	chunks := sd.Chunk(sd.ScheduleRequests(stationIDs, dates), min(size, sd.MaxStationsPerScheduleRequest))

	for i, chunk := range chunks {
		got, err := client.Schedules(ctx, chunk)
		if err != nil {
			if ctx.Err() != nil {
				return nil, failed, fmt.Errorf("schedules: %w", ctx.Err())
			}
			failed++
			metrics.IncChunkFailed(chunkSchedules)
			logger.Warn().
				Err(err).
				Str(xglog.FieldEvent, "schedule.chunk_failed").
				Int(xglog.FieldChunk, i).
				Int("stations", len(chunk)).
				Msg("skipping schedule chunk")
			continue
		}
		for _, b := range got {
			if b.Code != 0 {
				logger.Debug().
					Str(xglog.FieldEvent, "schedule.block_rejected").
					Str(xglog.FieldStationID, b.StationID).
					Int("code", b.Code).
					Str("response", b.Response).
					Msg("upstream rejected schedule block")
				continue
			}
			blocks = append(blocks, b)
		}
	}

	logger.Info().
		Str(xglog.FieldEvent, "schedules.fetched").
		Int("chunks", len(chunks)).
		Int("failed", failed).
		Int("blocks", len(blocks)).
		Int("days", len(dates)).
		Msg("schedules fetched")
	return blocks, failed, nil
}

// fetchPrograms requests program metadata chunk by chunk with the same
// failure handling as fetchSchedules.
func fetchPrograms(ctx context.Context, client Client, ids []string, size int) (programs []sd.Program, failed int, err error) {
	logger := xglog.WithComponentFromContext(ctx, "jobs")
	chunks := sd.Chunk(ids, min(size, sd.MaxProgramsPerRequest))

	for i, chunk := range chunks {
		got, err := client.Programs(ctx, chunk)
		if err != nil {
			if ctx.Err() != nil {
				return nil, failed, fmt.Errorf("programs: %w", ctx.Err())
			}
			failed++
			metrics.IncChunkFailed(chunkPrograms)
			logger.Warn().
				Err(err).
				Str(xglog.FieldEvent, "program.chunk_failed").
				Int(xglog.FieldChunk, i).
				Int("programs", len(chunk)).
				Msg("skipping program chunk")
			continue
		}
		programs = append(programs, got...)
	}

	logger.Info().
		Str(xglog.FieldEvent, "programs.fetched").
		Int("chunks", len(chunks)).
		Int("failed", failed).
		Int("requested", len(ids)).
		Int("received", len(programs)).
		Msg("programs fetched")
	return programs, failed, nil
}
