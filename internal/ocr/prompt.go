package ocr

// DefaultPrompt asks the model for the numbered block list that
// parser.Parse understands.
const DefaultPrompt = `You are an OCR assistant. Read all visible text in the given image.
Group the text into blocks and return one line per block, numbered from 1, in this exact form:

1: <text of the block> (from: {x:<left>, y:<top>}, to: {x:<right>, y:<bottom>})

Coordinates are integer pixel positions in the image; "from" is the top-left corner and "to" the bottom-right corner.
Blocks must not overlap.
After the list, add one final line:

Number of text blocks: <count>

Do not describe the image, do not repeat the image data and do not add any other text.`
