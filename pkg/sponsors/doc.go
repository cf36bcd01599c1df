/*
Package sponsors classifies sponsor records into display tiers.

A Record is assigned to the large, medium or small tier by comparing its
weight against a pair of Thresholds. Classify validates every record, groups
them by tier and orders each group by descending weight, breaking ties by
name. It performs no I/O and never mutates its input, so the same records
and thresholds always produce the same groups.
*/
package sponsors
