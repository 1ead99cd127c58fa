// Package savefile encodes and decodes FoodChain games in a flat text format.
//
// A save starts with KEY=VALUE header lines (ERA, GRIDSIZE, TOTALROUNDS,
// TURN, ROUND and, for finished games, GAMEOVER=true) followed by one
// comma-separated line per piece:
//
//	ERA=PAST
//	GRIDSIZE=SMALL
//	TOTALROUNDS=10
//	TURN=PREY
//	ROUND=3
//	APEX,name=Lion,score=1,cooldown=0,row=2,col=7
//	PREDATOR,name=Wolf,score=3,cooldown=2,row=4,col=4
//	PREY,name=Rabbit,score=2,cooldown=0,row=9,col=1
//	FOOD,name=Carrot,row=0,col=5
//
// A line is a header line iff it contains '=' and no ','. Line order is not
// significant. Decoding validates the whole file and rebuilds the board
// through the same placement checks as a new game; any problem with the
// content is reported as a *FormatError matching ErrInvalidFormat, while
// I/O failures such as a missing file keep their os error.
package savefile
