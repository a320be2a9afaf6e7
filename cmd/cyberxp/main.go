// Command cyberxp drives the reinforcement-learning engine's pluggable cyber
// systems from the command line: train a goal, replay a saved experience
// bundle, or serve a live training dashboard.
package main

func main() {
	Execute()
}
