// Package audit measures whether an operation's running time depends on
// secret state.
//
// A timing audit samples two variants of an operation (typically a key
// that is present and one that is not, against the same bucket population)
// in interleaved order, trims scheduler outliers and runs Welch's t-test on
// the two distributions. A p-value below the significance level means the
// two variants are distinguishable by timing alone.
package audit
