// Copyright 2022 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lattice

import "fmt"

// AnalysisError reports a violated analysis invariant. It always indicates a
// bug in the caller, never a property of the analyzed program. The solver
// recovers these at the transfer boundary and terminates with a diagnostic.
type AnalysisError struct {
	msg string
}

func (e *AnalysisError) Error() string {
	return "analysis invariant violation: " + e.msg
}

// analysisError aborts the current transfer with an AnalysisError.
func analysisError(format string, args ...interface{}) {
	panic(&AnalysisError{msg: fmt.Sprintf(format, args...)})
}
