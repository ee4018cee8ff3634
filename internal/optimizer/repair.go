package optimizer

// Repair makes a single pass over a chromosome's genes in order, dropping
// any gene whose insertion would duplicate an existing (teacher, timing),
// (room, timing), or (section, timing) triple. It never adds genes, and is
// idempotent: repairing an already-repaired chromosome changes nothing.
func Repair(snap *Snapshot, c Chromosome) Chromosome {
	bs := NewBusySet(snap)
	kept := make([]Gene, 0, len(c.Genes))

	for _, g := range c.Genes {
		if bs.TeacherBusy(g.TeacherID, g.TimingID) || bs.RoomBusy(g.RoomID, g.TimingID) || bs.SectionBusy(g.SectionID, g.TimingID) {
			continue
		}
		bs.Reserve(g)
		kept = append(kept, g)
	}

	repaired := Chromosome{Genes: kept}
	repaired.Fitness = Fitness(snap, repaired)
	return repaired
}
