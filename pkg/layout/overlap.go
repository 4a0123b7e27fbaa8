package layout

// ResolveRow assigns lanes and in-row offsets to the row's tasks and sets the
// row height. Tasks must be sorted by start time.
//
// Under stack, a task takes the first lane whose most recent task it does not
// overlap. Lanes are offset by the overlap offset when one is set; otherwise
// each lane starts below the tallest envelope of the lanes above it.
// Under stagger, a task overlapping its immediate predecessor shares the
// predecessor's lane and flips between offset 0 and the overlap offset;
// anything else opens a new lane at 0. Overlay tasks share lane 0 at 0.
//
// A row with a fixed height centers each overlap chain vertically. A free row
// grows to the lowest envelope plus padding above and below.
func ResolveRow(row *RowLayout, p RowPolicy) {
	row.Padding = p.Padding
	row.EarliestOverlay = nil
	row.Lanes = 0

	var (
		stackLanes  []*TaskLayout // most recent task per stack lane
		stackOffset = make(map[*TaskLayout]float64)
		staggers    int // stagger lanes opened so far
		prev        *TaskLayout
	)
	for _, t := range row.Tasks {
		t.Row = row
		t.PrevAdjacent, t.NextAdjacent = nil, nil
		t.Y, t.Lane = 0, 0

		b, off, hasOff := p.taskBehavior(t.Data)
		t.Overlap = b

		switch b {
		case BehaviorOverlay:
			if row.EarliestOverlay == nil {
				row.EarliestOverlay = t
			}

		case BehaviorStack:
			lane := 0
			for lane < len(stackLanes) && stackLanes[lane].Overall.Overlaps(t.Overall) {
				lane++
			}
			if lane < len(stackLanes) {
				link(stackLanes[lane], t)
				stackLanes[lane] = t
			} else {
				stackLanes = append(stackLanes, t)
			}
			t.Lane = lane
			if hasOff {
				stackOffset[t] = float64(lane) * off
			}

		case BehaviorStagger:
			if prev != nil {
				link(prev, t)
			}
			if prev != nil && prev.Overlap == BehaviorStagger && prev.Overall.Overlaps(t.Overall) {
				if !hasOff {
					off = p.StaggerOffset
				}
				t.Lane = prev.Lane
				if prev.Y == 0 {
					t.Y = off
				}
			} else {
				t.Lane = staggers
				staggers++
			}
		}
		prev = t
	}

	// Stack lanes without an explicit offset start below the lanes above.
	if len(stackLanes) > 0 {
		laneTop := stackLaneTops(row.Tasks, len(stackLanes), p.Padding)
		for _, t := range row.Tasks {
			if t.Overlap != BehaviorStack {
				continue
			}
			if y, ok := stackOffset[t]; ok {
				t.Y = y
			} else {
				t.Y = laneTop[t.Lane]
			}
		}
	}

	row.Lanes = max(len(stackLanes), staggers)
	if row.Lanes == 0 && len(row.Tasks) > 0 {
		row.Lanes = 1
	}

	if p.FixedHeight > 0 {
		centerChains(row.Tasks, p.FixedHeight-2*p.Padding)
		row.Height = p.FixedHeight
		return
	}
	row.Height = contentHeight(row.Tasks, p.EmptyHeight) + 2*p.Padding
}

// link makes b the same-lane successor of a.
func link(a, b *TaskLayout) {
	a.NextAdjacent = b
	b.PrevAdjacent = a
}

// stackLaneTops returns the cumulative offset of each stack lane, where a
// lane occupies its tallest envelope plus padding above and below.
func stackLaneTops(tasks []*TaskLayout, lanes int, pad float64) []float64 {
	tallest := make([]float64, lanes)
	for _, t := range tasks {
		if t.Overlap == BehaviorStack {
			tallest[t.Lane] = max(tallest[t.Lane], t.OverallHeight)
		}
	}
	tops := make([]float64, lanes)
	for i := 1; i < lanes; i++ {
		tops[i] = tops[i-1] + tallest[i-1] + 2*pad
	}
	return tops
}

// contentHeight is the lowest envelope edge, or empty when there are no tasks.
func contentHeight(tasks []*TaskLayout, empty float64) float64 {
	if len(tasks) == 0 {
		return empty
	}
	var h float64
	for _, t := range tasks {
		h = max(h, t.Y+t.OverallHeight)
	}
	return h
}

// centerChains shifts each run of mutually overlapping non-overlay tasks to
// the middle of the available height. Overlay tasks stay at the top.
func centerChains(tasks []*TaskLayout, avail float64) {
	flush := func(chain []*TaskLayout) {
		if len(chain) == 0 {
			return
		}
		extent := contentHeight(chain, 0)
		shift := (avail - extent) / 2
		if shift <= 0 {
			return
		}
		for _, t := range chain {
			t.Y += shift
		}
	}

	var (
		chain []*TaskLayout
		end   int64
	)
	for _, t := range tasks {
		if t.Overlap == BehaviorOverlay {
			continue
		}
		if len(chain) > 0 && t.Overall.Start >= end {
			flush(chain)
			chain = nil
		}
		if len(chain) == 0 || t.Overall.End > end {
			end = t.Overall.End
		}
		chain = append(chain, t)
	}
	flush(chain)
}
