package optimizer

// busyKey identifies one (owner, slot) booking. BusySet keeps a separate map
// per teacher/room/section kind so the three index spaces never collide.
type busyKey struct {
	ownerID int
	slotID  int
}

// BusySet tracks which (teacher, slot), (room, slot) and (section, slot)
// triples are already booked while Seed and GapFill place genes. The three
// sets are owned outright by whichever pass builds them, never shared.
type BusySet struct {
	teacher map[busyKey]bool
	room    map[busyKey]bool
	section map[busyKey]bool
}

// NewBusySet returns an empty tracker, optionally seeded with every timing
// pre-marked busy for the snapshot's absent teachers.
func NewBusySet(snap *Snapshot) *BusySet {
	bs := &BusySet{
		teacher: make(map[busyKey]bool),
		room:    make(map[busyKey]bool),
		section: make(map[busyKey]bool),
	}
	for key := range snap.AbsentTeacherSlots {
		bs.teacher[busyKey{ownerID: key[0], slotID: key[1]}] = true
	}
	return bs
}

func (b *BusySet) TeacherBusy(teacherID, timingID int) bool {
	return b.teacher[busyKey{teacherID, timingID}]
}

func (b *BusySet) RoomBusy(roomID, timingID int) bool {
	return b.room[busyKey{roomID, timingID}]
}

func (b *BusySet) SectionBusy(sectionID, timingID int) bool {
	return b.section[busyKey{sectionID, timingID}]
}

// Reserve marks a gene's three resources as busy.
func (b *BusySet) Reserve(g Gene) {
	b.teacher[busyKey{g.TeacherID, g.TimingID}] = true
	b.room[busyKey{g.RoomID, g.TimingID}] = true
	b.section[busyKey{g.SectionID, g.TimingID}] = true
}

// Release undoes Reserve, used when the seeder backtracks a chunk placement.
func (b *BusySet) Release(g Gene) {
	delete(b.teacher, busyKey{g.TeacherID, g.TimingID})
	delete(b.room, busyKey{g.RoomID, g.TimingID})
	delete(b.section, busyKey{g.SectionID, g.TimingID})
}

// FreeRoom returns the first room (in snapshot order) free at the given
// timing, or false if none qualifies.
func FreeRoom(snap *Snapshot, bs *BusySet, timingID int) (int, bool) {
	for _, r := range snap.Rooms {
		if !bs.RoomBusy(r.ID, timingID) {
			return r.ID, true
		}
	}
	return 0, false
}
