package codegen

import (
	"fmt"

	"pine/internal/ast"
	"pine/internal/errors"
)

// frameSize is the fixed stack frame reserved on entry. Variable slots
// sit at the bottom, the spill region directly above them.
const frameSize = 512

var tempRegs = [...]string{"t0", "t1", "t2", "t3", "t4", "t5", "t6"}

// Value is a handle to a live intermediate. It is either resident in
// one of the seven temporaries or evicted to a spill slot.
type Value struct {
	reg    int // index into tempRegs, -1 when spilled
	slot   int // spill slot index, -1 when in a register
	seq    int // acquisition order; the oldest resident is evicted first
	pinned bool
}

// registerFile owns t0..t6 and the spill region of the frame. Spill
// code is emitted through the generator's instruction sink.
type registerFile struct {
	emit      func(format string, args ...any)
	live      [len(tempRegs)]*Value
	slots     []*Value
	spillBase int
	seq       int
}

func newRegisterFile(spillBase int, emit func(format string, args ...any)) *registerFile {
	return &registerFile{
		emit:      emit,
		spillBase: spillBase,
	}
}

// Acquire hands out a free register. When all seven hold live values
// the oldest-acquired unpinned one is stored to the next free spill
// slot and its register reused.
func (rf *registerFile) Acquire() (*Value, error) {
	for i := range rf.live {
		if rf.live[i] == nil {
			return rf.take(i), nil
		}
	}

	victim := rf.oldest()
	if victim == nil {
		return nil, errors.NewCodeGenError(errors.ErrorSpillExhausted, ast.Span{},
			"all temporaries are pinned")
	}
	slot, err := rf.freeSlot()
	if err != nil {
		return nil, err
	}
	rf.emit("sw %s, %d(sp)", tempRegs[victim.reg], rf.slotOffset(slot))
	reg := victim.reg
	victim.reg = -1
	victim.slot = slot
	rf.slots[slot] = victim
	return rf.take(reg), nil
}

// Release frees whatever the value occupies. Released handles must not
// be materialized again.
func (rf *registerFile) Release(v *Value) {
	if v.reg >= 0 {
		rf.live[v.reg] = nil
		v.reg = -1
	}
	if v.slot >= 0 {
		if v.slot < len(rf.slots) {
			rf.slots[v.slot] = nil
		}
		v.slot = -1
	}
	v.pinned = false
}

// Materialize ensures v is resident and returns its register name,
// reloading from its spill slot if necessary. Reloading may in turn
// spill another register.
func (rf *registerFile) Materialize(v *Value) (string, error) {
	if v.reg >= 0 {
		return tempRegs[v.reg], nil
	}
	if v.slot < 0 {
		panic("codegen: materialize of a released value")
	}

	nv, err := rf.Acquire()
	if err != nil {
		return "", err
	}
	rf.emit("lw %s, %d(sp)", tempRegs[nv.reg], rf.slotOffset(v.slot))

	// Hand the fresh register over to v and retire the placeholder.
	rf.slots[v.slot] = nil
	v.slot = -1
	v.reg = nv.reg
	v.seq = nv.seq
	rf.live[v.reg] = v
	return tempRegs[v.reg], nil
}

// Pin exempts v's register from eviction until Unpin or Release. Used
// while a short-circuit join needs the register stable across the
// evaluation of the right operand.
func (rf *registerFile) Pin(v *Value) {
	v.pinned = true
}

func (rf *registerFile) Unpin(v *Value) {
	v.pinned = false
}

func (rf *registerFile) take(reg int) *Value {
	v := &Value{reg: reg, slot: -1, seq: rf.seq}
	rf.seq++
	rf.live[reg] = v
	return v
}

func (rf *registerFile) oldest() *Value {
	var victim *Value
	for _, v := range rf.live {
		if v == nil || v.pinned {
			continue
		}
		if victim == nil || v.seq < victim.seq {
			victim = v
		}
	}
	return victim
}

func (rf *registerFile) freeSlot() (int, error) {
	for i, v := range rf.slots {
		if v == nil {
			return i, nil
		}
	}
	slot := len(rf.slots)
	if rf.slotOffset(slot)+4 > frameSize {
		return 0, errors.NewCodeGenError(errors.ErrorSpillExhausted, ast.Span{},
			"expression needs more than the %d-byte stack frame", frameSize)
	}
	rf.slots = append(rf.slots, nil)
	return slot, nil
}

func (rf *registerFile) slotOffset(slot int) int {
	return rf.spillBase + 4*slot
}

func (rf *registerFile) regName(v *Value) string {
	if v.reg < 0 {
		panic(fmt.Sprintf("codegen: value not resident (slot %d)", v.slot))
	}
	return tempRegs[v.reg]
}
