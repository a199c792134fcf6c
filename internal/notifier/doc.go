// Package notifier reports accepted events while a calendar is being built.
//
// The console notifier prints the block operators see in cron logs: the
// event name, its circuit, the matched schedule lines and a separator.
package notifier
