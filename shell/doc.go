// Package shell holds the local front ends of the game.
//
// RenderASCII draws a board the way the terminal shows it: 'b' for white,
// 'n' for black, with spies only told apart once revealed. Terminal reads
// commands line by line and calls the engine directly. Selector is the
// two-click input state machine shared by the terminal and the browser board:
// the first click picks a piece of the side to move, the second either moves
// it or interrogates the enemy piece clicked.
package shell
