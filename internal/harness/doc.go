// Package harness runs projection scenarios and compares their artifacts
// against golden files.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	contracts:
//	  - svg
//	  - obj
//	events:
//	  - type: node.add
//	    ts: 1000
//	    payload: { id: n1, x: 10, y: 20 }
//	  - type: cursor.move
//	    ephemeral: true
//	    payload: { x: 5, y: 5 }
//	assertions:
//	  - type: artifact_contains
//	    contract: svg
//	    text: 'data-node-id="n1"'
//	  - type: deterministic
//
// Event ids default to evt-1, evt-2, ... in log order, actor to "harness"
// and space to "canvas". Omitting ts leaves the event untimed.
//
// # Assertion Types
//
//   - artifact_contains: the contract's artifact bytes contain text
//   - artifact_excludes: the contract's artifact bytes do not contain text
//   - artifact_count: text occurs exactly count times in the artifact
//   - artifact_digest: the artifact digest equals digest
//   - event_count: the replayed log holds exactly count events
//   - deterministic: two runs of each contract (or just contract) digest equally
//
// # Deterministic Testing
//
// Every scenario appends its events to a fresh in-memory SQLite log and
// replays them from there, so the artifacts are produced from what the
// store hands back rather than from the YAML directly. Generated ids are
// sequential, which keeps golden files stable across runs.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/single-node.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
