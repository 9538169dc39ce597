package confluent

import (
	"fmt"
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/commands"
	"github.com/leanovate/gopter/gen"
)

// setExpected is the reference model: the set of ints a Set[int] ought to
// contain, plus a few snapshots taken mid-run so later mutation can be
// checked not to disturb earlier handles.
type setExpected struct {
	entries  map[int]struct{}
	snapshot []map[int]struct{}
}

type setSystem struct {
	s        Set[int]
	snapshot []*Set[int]
}

const exerciserNSnapshots = 4

type setInsertCommand int

func (v setInsertCommand) Run(sut commands.SystemUnderTest) commands.Result {
	sys := sut.(*setSystem)
	next, _ := sys.s.Insert(int(v))
	sys.s.Release()
	sys.s = next
	return nil
}

func (v setInsertCommand) NextState(state commands.State) commands.State {
	state.(*setExpected).entries[int(v)] = struct{}{}
	return state
}

func (v setInsertCommand) PreCondition(commands.State) bool { return true }

func (v setInsertCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	if result != nil {
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (v setInsertCommand) String() string { return fmt.Sprintf("Insert(%d)", v) }

var genSetInsert = gen.IntRange(0, 999).Map(func(v int) commands.Command { return setInsertCommand(v) })

type setEraseCommand int

func (v setEraseCommand) Run(sut commands.SystemUnderTest) commands.Result {
	sys := sut.(*setSystem)
	next, _ := sys.s.Erase(int(v))
	sys.s.Release()
	sys.s = next
	return nil
}

func (v setEraseCommand) NextState(state commands.State) commands.State {
	delete(state.(*setExpected).entries, int(v))
	return state
}

func (v setEraseCommand) PreCondition(commands.State) bool { return true }

func (v setEraseCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	if result != nil {
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (v setEraseCommand) String() string { return fmt.Sprintf("Erase(%d)", v) }

var genSetErase = gen.IntRange(0, 999).Map(func(v int) commands.Command { return setEraseCommand(v) })

type setSizeCommand struct{}

func (setSizeCommand) Run(sut commands.SystemUnderTest) commands.Result {
	return sut.(*setSystem).s.Size()
}

func (setSizeCommand) NextState(state commands.State) commands.State { return state }

func (setSizeCommand) PreCondition(commands.State) bool { return true }

func (setSizeCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	want := uint64(len(state.(*setExpected).entries))
	if result.(uint64) != want {
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (setSizeCommand) String() string { return "Size" }

// setSnapshotCommand clones the current handle into a slot, overwriting
// (and releasing) whatever was held there before.
type setSnapshotCommand int

func (n setSnapshotCommand) Run(sut commands.SystemUnderTest) commands.Result {
	sys := sut.(*setSystem)
	slot := int(n) % exerciserNSnapshots
	if sys.snapshot[slot] != nil {
		sys.snapshot[slot].Release()
	}
	clone := sys.s.Clone()
	sys.snapshot[slot] = &clone
	return nil
}

func (n setSnapshotCommand) NextState(state commands.State) commands.State {
	s := state.(*setExpected)
	slot := int(n) % exerciserNSnapshots
	copyOf := make(map[int]struct{}, len(s.entries))
	for k := range s.entries {
		copyOf[k] = struct{}{}
	}
	s.snapshot[slot] = copyOf
	return s
}

func (n setSnapshotCommand) PreCondition(commands.State) bool { return true }

func (n setSnapshotCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (n setSnapshotCommand) String() string {
	return fmt.Sprintf("Snapshot(%d)", int(n)%exerciserNSnapshots)
}

var genSetSnapshot = gen.IntRange(0, 1000).Map(func(v int) commands.Command { return setSnapshotCommand(v) })

// setCheckSnapshotCommand verifies a previously taken snapshot still has
// the size it had at the time, regardless of how many mutations have
// happened to the live handle since.
type setCheckSnapshotCommand int

func (n setCheckSnapshotCommand) Run(sut commands.SystemUnderTest) commands.Result {
	sys := sut.(*setSystem)
	slot := int(n) % exerciserNSnapshots
	snap := sys.snapshot[slot]
	if snap == nil {
		return true
	}
	return snap.Size()
}

func (n setCheckSnapshotCommand) NextState(state commands.State) commands.State { return state }

func (n setCheckSnapshotCommand) PreCondition(state commands.State) bool {
	return state.(*setExpected).snapshot[int(n)%exerciserNSnapshots] != nil
}

func (n setCheckSnapshotCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	s := state.(*setExpected)
	slot := int(n) % exerciserNSnapshots
	want := uint64(len(s.snapshot[slot]))
	switch r := result.(type) {
	case bool:
		if !r {
			return &gopter.PropResult{Status: gopter.PropFalse}
		}
	case uint64:
		if r != want {
			return &gopter.PropResult{Status: gopter.PropFalse}
		}
	}
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (n setCheckSnapshotCommand) String() string {
	return fmt.Sprintf("CheckSnapshot(%d)", int(n)%exerciserNSnapshots)
}

var genSetCheckSnapshot = gen.IntRange(0, 1000).Map(func(v int) commands.Command { return setCheckSnapshotCommand(v) })

var setCommands = &commands.ProtoCommands{
	NewSystemUnderTestFunc: func(initialState commands.State) commands.SystemUnderTest {
		s0 := initialState.(*setExpected)
		p := newIntSetProvider()
		s := NewSet(p)
		var keys []int
		for k := range s0.entries {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		for _, k := range keys {
			next, _ := s.Insert(k)
			s.Release()
			s = next
		}
		return &setSystem{s: s, snapshot: make([]*Set[int], exerciserNSnapshots)}
	},
	DestroySystemUnderTestFunc: func(sut commands.SystemUnderTest) {
		sys := sut.(*setSystem)
		sys.s.Release()
		for _, snap := range sys.snapshot {
			if snap != nil {
				snap.Release()
			}
		}
	},
	InitialStateGen: gen.MapOf(gen.IntRange(0, 999), gen.Const(struct{}{})).Map(func(entries map[int]struct{}) *setExpected {
		return &setExpected{entries: entries, snapshot: make([]map[int]struct{}, exerciserNSnapshots)}
	}),
	InitialPreConditionFunc: func(commands.State) bool { return true },
	GenCommandFunc: func(state commands.State) gopter.Gen {
		return gen.Weighted(
			[]gen.WeightedGen{
				{Weight: 100, Gen: genSetInsert},
				{Weight: 100, Gen: genSetErase},
				{Weight: 100, Gen: gen.Const(setSizeCommand{})},
				{Weight: 10, Gen: genSetSnapshot},
				{Weight: 10, Gen: genSetCheckSnapshot},
			},
		)
	},
}

func TestSetExerciser(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	properties.Property("set exerciser", commands.Prop(setCommands))
	properties.TestingRun(t)
}
