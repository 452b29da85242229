// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Hopfield provides a discrete Hopfield network: an associative memory that
stores bipolar (+1 / -1) patterns in a symmetric weight matrix with the
outer-product rule, and recovers a stored pattern from a noisy or partial
probe by asynchronous updates that descend the network energy.

The `hopfield` package holds the model.  Its `Network` has one `Layer` of
units, with state variables (Act, Net, Thr) recorded as `etensor.Float32`,
and a full lateral `Prjn` holding the weights (Wt), so that parameters can
be styled with emergent `params` and weights saved in the emergent weights
JSON format.  A `PatternSet` holds the training patterns, and `Predict`
returns the full history of states visited during recall together with
whether it converged.

The `runstore` package records recall runs in SQLite, MySQL or Postgres, and
`cmd/hopfield` is the command-line front end.  `examples/capacity` measures
recall as a function of the number of stored patterns.
*/
package hopfield
