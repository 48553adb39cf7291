package scheduler

// interval is a half-open hour range [start, end).
type interval struct {
	start int
	end   int
}

func (i interval) overlaps(other interval) bool {
	return max(i.start, other.start) < min(i.end, other.end)
}

// registry tracks booked intervals per resource and day. Resources that were
// not registered up front are always free and never recorded.
type registry map[string]map[Day][]interval

func newRegistry(ids []string) registry {
	r := make(registry, len(ids))
	for _, id := range ids {
		days := make(map[Day][]interval, len(Weekdays))
		for _, day := range Weekdays {
			days[day] = nil
		}
		r[id] = days
	}
	return r
}

func (r registry) isFree(id string, day Day, slot interval) bool {
	days, ok := r[id]
	if !ok {
		return true
	}
	for _, booked := range days[day] {
		if slot.overlaps(booked) {
			return false
		}
	}
	return true
}

func (r registry) book(id string, day Day, slot interval) {
	days, ok := r[id]
	if !ok {
		return
	}
	days[day] = append(days[day], slot)
}

func (r registry) load(id string, day Day) int {
	return len(r[id][day])
}
