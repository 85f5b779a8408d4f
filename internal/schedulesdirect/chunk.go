// SPDX-License-Identifier: MIT

package schedulesdirect

// Upstream request caps.
const (
	MaxStationsPerScheduleRequest = 5000
	MaxProgramsPerRequest         = 5000
)

// Chunk splits items into consecutive slices of at most size elements.
// A non-positive size yields a single chunk.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size >= len(items) {
		return [][]T{items}
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end:end])
	}
	return out
}

// ScheduleRequests builds one request per station covering the same dates.
func ScheduleRequests(stationIDs, dates []string) []ScheduleRequest {
	out := make([]ScheduleRequest, 0, len(stationIDs))
	for _, id := range stationIDs {
		out = append(out, ScheduleRequest{StationID: id, Date: dates})
	}
	return out
}
