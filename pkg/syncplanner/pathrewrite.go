package syncplanner

// splitPaths partitions sourcePaths and targetPaths (paths currently
// referring to the same two matched files) into source-only, target-only,
// and common paths.
func splitPaths(sourcePaths, targetPaths []string) (sOnly, tOnly, common []string) {
	tSet := make(map[string]struct{}, len(targetPaths))
	for _, p := range targetPaths {
		tSet[p] = struct{}{}
	}
	sSet := make(map[string]struct{}, len(sourcePaths))
	for _, p := range sourcePaths {
		sSet[p] = struct{}{}
	}

	for _, p := range sourcePaths {
		if _, ok := tSet[p]; ok {
			common = append(common, p)
		} else {
			sOnly = append(sOnly, p)
		}
	}
	for _, p := range targetPaths {
		if _, ok := sSet[p]; !ok {
			tOnly = append(tOnly, p)
		}
	}
	return sOnly, tOnly, common
}

// PathPairing pairs some of a matched pair's leftover target-only paths
// with leftover source-only paths: each pair becomes one move From->To.
type PathPairing [][2]string

// enumeratePairings returns every way to pair k = min(len(sOnly),
// len(tOnly)) of tOnly's paths with k of sOnly's paths. When either side
// is empty there's exactly one (empty) pairing, since no move is needed:
// the remaining leftovers are handled as plain links or unlinks.
func enumeratePairings(sOnly, tOnly []string) []PathPairing {
	k := len(sOnly)
	if len(tOnly) < k {
		k = len(tOnly)
	}
	if k == 0 {
		return []PathPairing{{}}
	}

	fixed, pool := tOnly, sOnly
	if len(tOnly) > len(sOnly) {
		fixed, pool = sOnly, tOnly
	}
	var pairings []PathPairing
	var permute func(remaining, chosen []string)
	permute = func(remaining, chosen []string) {
		if len(chosen) == k {
			pairing := make(PathPairing, k)
			for i := 0; i < k; i++ {
				if len(tOnly) > len(sOnly) {
					pairing[i] = [2]string{chosen[i], fixed[i]}
				} else {
					pairing[i] = [2]string{fixed[i], chosen[i]}
				}
			}
			pairings = append(pairings, pairing)
			return
		}
		for i, s := range remaining {
			rest := make([]string, 0, len(remaining)-1)
			rest = append(rest, remaining[:i]...)
			rest = append(rest, remaining[i+1:]...)
			permute(rest, append(chosen, s))
		}
	}
	permute(pool, nil)
	return pairings
}

// rewriteOps computes the operations that turn a matched pair's
// targetPaths into sourcePaths, using pairing to decide which leftover
// target path moves to which leftover source path when both sides have
// leftovers. The anchor for new links is targetPaths[0], an original
// target path guaranteed to still exist during the plan's link phase;
// the witness for unlinks is sourcePaths[0], guaranteed to exist once
// every operation for this pair has run.
func rewriteOps(sourcePaths, targetPaths []string, pairing PathPairing) []Operation {
	sOnly, tOnly, _ := splitPaths(sourcePaths, targetPaths)
	if len(sOnly) == 0 && len(tOnly) == 0 {
		return nil
	}

	anchor := targetPaths[0]
	witness := sourcePaths[0]

	if len(sOnly) == 0 {
		ops := make([]Operation, 0, len(tOnly))
		for _, p := range tOnly {
			ops = append(ops, Operation{Kind: OpUnlink, From: p, UndoWitness: witness})
		}
		return ops
	}
	if len(tOnly) == 0 {
		ops := make([]Operation, 0, len(sOnly))
		for _, p := range sOnly {
			ops = append(ops, Operation{Kind: OpLink, From: anchor, To: p})
		}
		return ops
	}

	var ops []Operation
	pairedT := make(map[string]bool, len(pairing))
	pairedS := make(map[string]bool, len(pairing))
	for _, pair := range pairing {
		ops = append(ops, Operation{Kind: OpMove, From: pair[0], To: pair[1]})
		pairedT[pair[0]] = true
		pairedS[pair[1]] = true
	}
	for _, p := range tOnly {
		if !pairedT[p] {
			ops = append(ops, Operation{Kind: OpUnlink, From: p, UndoWitness: witness})
		}
	}
	for _, p := range sOnly {
		if !pairedS[p] {
			ops = append(ops, Operation{Kind: OpLink, From: anchor, To: p})
		}
	}
	return ops
}
