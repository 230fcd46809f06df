// Package report collects test results and failure evidence.
//
// AllureWriter lays results out the way the Allure command line tool expects
// them, so `allure serve <results dir>` renders the run. Recorder keeps
// results in memory, and Summary renders a short console recap at the end of
// a run.
package report
