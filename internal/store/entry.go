package store

import "encoding/json"

// SolventStats is the observed-shift summary for one entry/solvent pair.
type SolventStats struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Count int     `json:"cnt"`
}

// Entry is the per-HOSE-key payload: a nucleus, a reference structure, and
// one SolventStats submap per solvent the reference value was observed in.
// On the wire the nucleus and SMILES fields sit flat alongside the solvent
// submaps in a single JSON object (keys "n" and "s" are reserved; every
// other key names a solvent), so Entry carries its own marshaling rather
// than delegating to struct tags.
type Entry struct {
	Nucleus  string
	SMILES   string
	Solvents map[string]SolventStats
}

func (e Entry) MarshalJSON() ([]byte, error) {
	raw := make(map[string]interface{}, len(e.Solvents)+2)
	raw["n"] = e.Nucleus
	raw["s"] = e.SMILES
	for solvent, stats := range e.Solvents {
		raw[solvent] = stats
	}
	return json.Marshal(raw)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Solvents = make(map[string]SolventStats, len(raw))
	for key, val := range raw {
		switch key {
		case "n":
			if err := json.Unmarshal(val, &e.Nucleus); err != nil {
				return err
			}
		case "s":
			if err := json.Unmarshal(val, &e.SMILES); err != nil {
				return err
			}
		default:
			var stats SolventStats
			if err := json.Unmarshal(val, &stats); err != nil {
				return err
			}
			e.Solvents[key] = stats
		}
	}
	return nil
}

// WeightedAvg is round10(Σ avg·count / Σ count) over the entry's solvent
// submaps, 0 when no solvent carries any observation.
func WeightedAvg(e Entry) float64 {
	var sumWeighted, sumCount float64
	for _, stats := range e.Solvents {
		sumWeighted += stats.Avg * float64(stats.Count)
		sumCount += float64(stats.Count)
	}
	if sumCount == 0 {
		return 0
	}
	return round(sumWeighted/sumCount, 10)
}

// Solvents answers the entry's solvent submaps, excluding the nucleus and
// SMILES metadata fields already surfaced on Entry itself.
func Solvents(e Entry) map[string]SolventStats {
	return e.Solvents
}

func round(x float64, scale float64) float64 {
	if x >= 0 {
		return float64(int64(x*scale+0.5)) / scale
	}
	return float64(int64(x*scale-0.5)) / scale
}

// Chunk is one loadable shard: the HOSE keys whose ChunkIndex selects it.
type Chunk map[string]Entry
