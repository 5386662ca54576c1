// Package cachekey holds Redis keys that are written by one package and
// invalidated by another.
package cachekey

// PayrollSummary caches payroll.PayrollSummary. Any salary structure write
// invalidates it.
const PayrollSummary = "payroll:summary"
