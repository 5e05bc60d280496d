// Package pipeline renders configured variables into frames and animations.
//
// For one variable [Orchestrator.RunVariable] runs, strictly in order:
//
//  1. open the variable's field (one independent open per call)
//  2. scan every timestep for the global value range
//  3. build the lookup table once
//  4. render and write each timestep, sequentially
//  5. hand the frames to the animation assembler
//
// [Orchestrator.RunAll] submits one such run per variable to a
// [taskpool.Pool], so variables render concurrently while each variable's
// own steps stay sequential. A variable that fails does not stop the others.
package pipeline
