package arena

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// stateDigest folds the authoritative combat state into a canonical
// sha256. Two arenas given identical inputs must produce identical
// digests tick for tick; the encoding is therefore fully ordered and
// floats are rendered with an exact format rather than %v.
func (a *Arena) stateDigest(nowTick uint64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "tick=%d\n", nowTick)

	for _, id := range a.sortedActorIDs() {
		ac := a.actors[id]
		b.WriteString("actor=")
		b.WriteString(id)
		b.WriteString(" pos=")
		b.WriteString(fmtF(ac.Pos.X))
		b.WriteByte(',')
		b.WriteString(fmtF(ac.Pos.Y))
		b.WriteString(" yaw=")
		b.WriteString(fmtF(ac.Yaw))
		fmt.Fprintf(&b, " hp=%d faction=%s weapon=%s cd=%d dead=%t",
			ac.HP, ac.Faction, ac.Weapon, ac.Cooldown, ac.Dead)
		if ac.Attack != nil {
			fmt.Fprintf(&b, " atk=%s:%d:%t", ac.Attack.Phase, ac.Attack.Remaining, ac.Attack.HasHit)
		}
		if ac.Parry != nil {
			fmt.Fprintf(&b, " parry=%s:%d:%s", ac.Parry.Phase, ac.Parry.Remaining, ac.Parry.Against)
		}
		if ac.Stagger != nil {
			fmt.Fprintf(&b, " stagger=%d:%s", ac.Stagger.Remaining, ac.Stagger.Source)
		}
		if ac.pending != nil {
			fmt.Fprintf(&b, " pending=%d:%s", ac.pending.DelayTicks, ac.pending.Target)
		}
		b.WriteByte('\n')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func fmtF(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
