package agents

// TakeHit queues damage from an attacker for the next health update.
func (a *Agent) TakeHit(from AgentID, damage int) {
	if a.Incoming == nil {
		a.Incoming = make(map[AgentID]int)
	}
	a.Incoming[from] += damage
}

// UpdateHP applies regeneration, then every queued hit reduced by defense,
// clamping to [0, MaxHP] after each step, and empties the queue.
func (a *Agent) UpdateHP() {
	if !a.Alive() {
		clear(a.Incoming)
		return
	}
	a.HP = clampHP(a.HP+a.Regen, a.MaxHP)

	for _, dmg := range a.Incoming {
		a.HP -= Mitigate(dmg, a.Defense)
	}
	a.HP = clampHP(a.HP, a.MaxHP)
	clear(a.Incoming)
}

// Mitigate returns the damage left after defense, never negative.
func Mitigate(damage, defense int) int {
	return max(0, damage-defense)
}

func clampHP(hp, maxHP int) int {
	return min(max(hp, 0), maxHP)
}
